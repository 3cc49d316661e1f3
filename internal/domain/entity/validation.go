package entity

// ValidateEvent checks the structural validity of a notification event.
// Unknown notification types are allowed (content generation fails open to a
// generic template) and a missing type is rejected. Channel is optional:
// dispatch events are channel-agnostic and fan out to every requested
// channel, so only a set-but-unknown channel is rejected.
func ValidateEvent(ev NotificationEvent) error {
	if ev.Type == "" {
		return &ValidationError{Field: "type", Message: "notification type is required"}
	}
	if ev.Channel != "" && !ev.Channel.IsValid() {
		return &ValidationError{Field: "channel", Message: "channel must be push, email, or sms"}
	}
	return nil
}
