// Package content builds channel-appropriate notification copy from
// structured events. It dispatches on the notification type through a fixed
// template table, then derives email and SMS variants from the push content
// so all three channels report the same underlying facts.
//
// Content generation never fails: malformed dates, missing names, and unknown
// types degrade to fallback copy rather than errors.
package content

import (
	"net/url"

	"tripnotify/internal/config"
	"tripnotify/internal/domain/entity"
	"tripnotify/internal/utils/text"
)

// smsBodyBudget is how much of the push body survives into an SMS before the
// brand prefix is applied. The composed message is re-validated against
// entity.SMSMaxLength afterwards.
const smsBodyBudget = 140

// previewTextBudget bounds the email preview line shown by mail clients.
const previewTextBudget = 90

// Builder turns notification events into per-channel content. It is
// stateless beyond its branding configuration and safe for concurrent use.
type Builder struct {
	branding *config.BrandingConfig
}

// NewBuilder creates a content builder with the given branding. A nil
// branding falls back to the compiled-in defaults.
func NewBuilder(branding *config.BrandingConfig) *Builder {
	if branding == nil {
		branding = config.DefaultBranding()
	}
	return &Builder{branding: branding}
}

// Build produces the content for the event's channel. Dispatch happens on the
// notification type first; the channel only selects the packaging.
func (b *Builder) Build(ev entity.NotificationEvent) entity.Content {
	push := b.buildPush(ev)

	switch ev.Channel {
	case entity.ChannelEmail:
		email := b.deriveEmail(push, ev)
		RecordBuilt(string(ev.Type), string(entity.ChannelEmail))
		return entity.Content{Channel: entity.ChannelEmail, Email: &email}
	case entity.ChannelSMS:
		sms := b.deriveSMS(push)
		RecordBuilt(string(ev.Type), string(entity.ChannelSMS))
		return entity.Content{Channel: entity.ChannelSMS, SMS: &sms}
	default:
		RecordBuilt(string(ev.Type), string(entity.ChannelPush))
		return entity.Content{Channel: entity.ChannelPush, Push: &push}
	}
}

// BuildAllChannels builds the push, email, and SMS variants of one event in a
// single call. The template dispatch runs exactly once; the email and SMS
// variants are derived from that one push rendering, which is what guarantees
// cross-channel message consistency.
func (b *Builder) BuildAllChannels(ev entity.NotificationEvent) entity.AllChannelContent {
	push := b.buildPush(ev)
	for _, ch := range entity.AllDeliveryChannels() {
		RecordBuilt(string(ev.Type), string(ch))
	}
	return entity.AllChannelContent{
		Push:  push,
		Email: b.deriveEmail(push, ev),
		SMS:   b.deriveSMS(push),
	}
}

// buildPush runs the per-type template. Unknown types fall back to the
// generic template (fail-open).
func (b *Builder) buildPush(ev entity.NotificationEvent) entity.PushContent {
	tc := templateContext{
		TripLabel: text.FormatTripDisplayName(ev.Trip.TripName),
		Suffix: text.BuildTripContext(text.TripFacts{
			Locations: ev.Trip.Locations,
			StartDate: ev.Trip.StartDate,
			EndDate:   ev.Trip.EndDate,
		}),
		Actor: ev.ActorName,
		Count: ev.Count,
		Extra: ev.Extra,
	}
	if tc.Actor == "" {
		tc.Actor = "Someone"
	}

	tmpl, ok := templates[ev.Type]
	if !ok {
		RecordTemplateFallback(string(ev.Type))
		tmpl = genericTemplate
	}
	return tmpl(tc)
}

// deriveEmail packages push content for email delivery. Subject and body are
// taken from the push variant verbatim; only CTA and footer are added.
func (b *Builder) deriveEmail(push entity.PushContent, ev entity.NotificationEvent) entity.EmailContent {
	return entity.EmailContent{
		Subject:     push.Title,
		PreviewText: text.Truncate(push.Body, previewTextBudget),
		Heading:     push.Title,
		BodyText:    push.Body,
		CTALabel:    b.branding.Branding.CTALabel,
		CTAURL:      b.ctaURL(ev),
		FooterText:  b.branding.Branding.FooterDisclosure,
	}
}

// deriveSMS packages push content as a single SMS segment: push body
// truncated to the SMS budget, brand-prefixed, then re-validated against the
// hard 160-character limit.
func (b *Builder) deriveSMS(push entity.PushContent) entity.SmsContent {
	body := text.Truncate(push.Body, smsBodyBudget)
	message := b.branding.Branding.SMSPrefix + body
	if len([]rune(message)) > entity.SMSMaxLength {
		RecordSMSTruncated()
		message = text.Truncate(message, entity.SMSMaxLength)
	}
	return entity.SmsContent{Message: message}
}

// ctaURL builds the email call-to-action target from the event's optional
// trip identifier, falling back to the application root.
func (b *Builder) ctaURL(ev entity.NotificationEvent) string {
	root := b.branding.Branding.AppRootURL
	tripID := ev.Extra["trip_id"]
	if tripID == "" {
		return root
	}
	return root + "/trips/" + url.PathEscape(tripID)
}
