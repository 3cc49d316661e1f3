// Package render turns channel content into provider-ready payloads.
// The email renderer produces an HTML document and a plaintext alternative
// from the same EmailContent, so multipart messages never disagree.
package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"tripnotify/internal/config"
	"tripnotify/internal/domain/entity"
)

// emailHTML is the single email layout. All content fields pass through
// html/template's contextual escaping; BodyText and Heading are event-derived
// strings and must never be treated as markup.
const emailHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Helvetica,Arial,sans-serif;">
<span style="display:none;max-height:0;overflow:hidden;">{{.PreviewText}}</span>
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:24px;">
<table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;">
<tr><td style="padding:24px 32px;border-bottom:1px solid #e4e4e7;">
  <span style="font-size:18px;font-weight:bold;color:#1f2937;">{{.BrandName}}</span>
  <span style="float:right;font-size:12px;color:#9ca3af;">{{.SentAt}}</span>
</td></tr>
<tr><td style="padding:32px;">
  <h1 style="margin:0 0 16px;font-size:20px;color:#111827;">{{.Heading}}</h1>
  <p style="margin:0 0 24px;font-size:15px;line-height:1.6;color:#374151;">{{.BodyText}}</p>
  {{if .CTAURL}}<a href="{{.CTAURL}}" style="display:inline-block;padding:12px 24px;background-color:#2563eb;color:#ffffff;text-decoration:none;border-radius:6px;font-size:14px;">{{.CTALabel}}</a>{{end}}
</td></tr>
<tr><td style="padding:24px 32px;border-top:1px solid #e4e4e7;">
  <p style="margin:0 0 8px;font-size:12px;color:#6b7280;">{{.FooterText}}</p>
  <a href="{{.SettingsURL}}" style="font-size:12px;color:#2563eb;">Notification settings</a>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`

// EmailRenderer renders EmailContent into HTML and plaintext bodies.
type EmailRenderer struct {
	branding *config.BrandingConfig
	tmpl     *template.Template
	now      func() time.Time
}

// NewEmailRenderer creates an EmailRenderer bound to the given branding.
// A nil branding falls back to the compiled-in defaults.
func NewEmailRenderer(branding *config.BrandingConfig) *EmailRenderer {
	if branding == nil {
		branding = config.DefaultBranding()
	}
	return &EmailRenderer{
		branding: branding,
		tmpl:     template.Must(template.New("email").Parse(emailHTML)),
		now:      time.Now,
	}
}

// emailTemplateData is the escaped view passed to the HTML template.
type emailTemplateData struct {
	BrandName   string
	SentAt      string
	PreviewText string
	Heading     string
	BodyText    string
	CTALabel    string
	CTAURL      string
	FooterText  string
	SettingsURL string
}

// RenderHTML renders the HTML body for an email. Every content field is
// escaped by html/template, so event-derived text (trip names, actor names)
// cannot inject markup.
//
// Returns:
//   - string: The rendered HTML document
//   - error: Non-nil if template execution failed
func (r *EmailRenderer) RenderHTML(content entity.EmailContent) (string, error) {
	data := emailTemplateData{
		BrandName:   r.branding.Branding.BrandName,
		SentAt:      r.now().UTC().Format("Jan 2, 2006 15:04 MST"),
		PreviewText: content.PreviewText,
		Heading:     content.Heading,
		BodyText:    content.BodyText,
		CTALabel:    content.CTALabel,
		CTAURL:      content.CTAURL,
		FooterText:  content.FooterText,
		SettingsURL: r.branding.Branding.SettingsURL,
	}

	var buf strings.Builder
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email html: %w", err)
	}
	return buf.String(), nil
}

// RenderPlaintext renders the plaintext alternative carrying the same facts
// as the HTML body, for multipart/alternative messages and clients that
// refuse HTML.
func (r *EmailRenderer) RenderPlaintext(content entity.EmailContent) string {
	lines := []string{
		content.Heading,
		"",
		content.BodyText,
	}
	if content.CTAURL != "" {
		lines = append(lines, "", content.CTALabel+": "+content.CTAURL)
	}
	lines = append(lines, "", content.FooterText,
		"Notification settings: "+r.branding.Branding.SettingsURL)
	return strings.Join(lines, "\n")
}
