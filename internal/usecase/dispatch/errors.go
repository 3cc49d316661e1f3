package dispatch

import "errors"

// ErrNoRecipients is returned when a dispatch request names no recipients.
// Dispatching to nobody is a caller bug, not an empty success.
var ErrNoRecipients = errors.New("dispatch request has no recipients")

// ErrShutdown is returned when a dispatch is attempted after Shutdown.
var ErrShutdown = errors.New("dispatch service is shut down")
