package apiclient

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// KindAPI is a non-success response carrying a server message. Not retried.
	KindAPI Kind = iota + 1
	// KindTransient is a 502, 503 or 504 response. Retried.
	KindTransient
	// KindTimeout is an attempt that hit the per-request timeout. Retried.
	KindTimeout
	// KindNetwork is a transport failure (refused, reset, DNS). Not retried.
	KindNetwork
	// KindUnavailable is a call rejected by the open circuit breaker.
	KindUnavailable
	// KindDecode is a success response whose body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindAPI:
		return "api"
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindUnavailable:
		return "unavailable"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the single error shape returned by Client. Message is ready to
// show to a user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindTransient
}

// IsNotFoundOrNotAllowed reports a 404 or 405 answer, the signal that an
// endpoint is missing on the backend.
func IsNotFoundOrNotAllowed(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusMethodNotAllowed
}

// IsTransient reports failures worth trying again later: timeouts, gateway
// errors, transport errors and an open breaker.
func IsTransient(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindTransient, KindTimeout, KindNetwork, KindUnavailable:
		return true
	}
	return false
}

// StatusOf returns the HTTP status behind err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func isTransientStatus(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}
