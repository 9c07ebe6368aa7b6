package session

import "errors"

// ErrStaleAuth means the stored token was rejected by the backend and the
// session was cleared.
var ErrStaleAuth = errors.New("session expired, please log in again")

// ValidationError is a rejected form field. Message is ready to display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
