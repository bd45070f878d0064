package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means no response was received (dial failure, timeout, cancelled context).
	KindNetwork Kind = iota + 1
	// KindServer means the API answered with a 4xx/5xx status.
	KindServer
	// KindValidation means the request was rejected before it was sent.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// NetworkNotice is shown when a request never reached the API.
const NetworkNotice = "Network error. Please check your connection."

// Error is the normalized failure returned by every API call.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	// Message is the server-provided message for KindServer, or the
	// validation message for KindValidation.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Message != "" {
			return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	case KindNetwork:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a client-side validation error. No request is made.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// Message turns err into a user-facing message: a server-provided message
// first, then the generic network notice, then fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	switch apiErr.Kind {
	case KindServer, KindValidation:
		if apiErr.Message != "" {
			return apiErr.Message
		}
	case KindNetwork:
		return NetworkNotice
	}
	return fallback
}
