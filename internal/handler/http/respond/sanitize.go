package respond

import (
	"regexp"
)

var (
	// Gateway credentials travel in Authorization headers and signed webhook
	// URLs, both of which show up verbatim in transport errors.
	bearerTokenPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._\-]+`)
	urlSecretPattern   = regexp.MustCompile(`(?i)([?&])(token|key|api_key|secret|signature)=[^&\s]+`)

	// Passwords embedded in connection strings (DATABASE_URL and friends).
	dsnPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError masks credentials in an error message before it is logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlSecretPattern.ReplaceAllString(msg, "$1$2=****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
