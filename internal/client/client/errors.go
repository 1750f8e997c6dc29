package client

import (
	"errors"
	"net/http"
)

// Sentinels for errors.Is. Every error returned by HTTPClient is an *Error
// that matches exactly one of them (validation, auth, forbidden, not found)
// or ErrUnavailable for network and 5xx failures.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("server unavailable")
)

// GenericNetworkMessage is shown for timeouts and transport failures.
const GenericNetworkMessage = "Network error. Please check your connection and try again."

// Kind classifies an Error.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
)

// Error is the normalised shape of every API failure. Message is safe to
// show to the user; Err keeps the underlying cause for logs.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) and friends match by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUnauthorized:
		return e.Kind == KindAuth
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUnavailable:
		return e.Kind == KindNetwork || e.Kind == KindServer
	}
	return false
}

// NewValidationError builds a client-side (pre-flight) validation error.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: GenericNetworkMessage, Err: cause}
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized:
		return KindAuth
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusRequestTimeout:
		return KindNetwork
	case code >= 500, code == http.StatusTooManyRequests:
		return KindServer
	default:
		return KindValidation
	}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
