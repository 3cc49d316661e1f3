package entity

// PushContent is the title/body pair delivered to a push provider.
type PushContent struct {
	Title string
	Body  string
}

// EmailContent carries the fields an email provider and the HTML renderer
// consume. Subject and BodyText are derived from the push variant of the same
// event so the two channels never disagree on facts.
type EmailContent struct {
	Subject     string
	PreviewText string
	Heading     string
	BodyText    string
	CTALabel    string
	CTAURL      string
	FooterText  string
}

// SmsContent is a single SMS message. Invariant: Message always begins with
// the configured brand prefix and never exceeds SMSMaxLength characters.
type SmsContent struct {
	Message string
}

// SMSMaxLength is the hard ceiling for a single SMS segment.
const SMSMaxLength = 160

// Content is the per-channel output of the content builder, tagged by Channel.
// Exactly one of Push, Email, SMS is non-nil, matching the tag.
type Content struct {
	Channel DeliveryChannel
	Push    *PushContent
	Email   *EmailContent
	SMS     *SmsContent
}

// AllChannelContent bundles the three channel variants built from one event in
// a single template dispatch, guaranteeing cross-channel consistency.
type AllChannelContent struct {
	Push  PushContent
	Email EmailContent
	SMS   SmsContent
}

// ForChannel returns the tagged Content for a single channel out of the bundle.
func (a AllChannelContent) ForChannel(ch DeliveryChannel) Content {
	switch ch {
	case ChannelEmail:
		email := a.Email
		return Content{Channel: ChannelEmail, Email: &email}
	case ChannelSMS:
		sms := a.SMS
		return Content{Channel: ChannelSMS, SMS: &sms}
	default:
		push := a.Push
		return Content{Channel: ChannelPush, Push: &push}
	}
}
