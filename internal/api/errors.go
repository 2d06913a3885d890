package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	// KindTransport means the request could not be sent or the body not read.
	KindTransport Kind = "transport"
	// KindMalformed means the body was not the structured data expected.
	KindMalformed Kind = "malformed_response"
	// KindServer means a well-formed reply carried an error or a non-success status.
	KindServer Kind = "server"
	// KindValidation means caller input was rejected before any request.
	KindValidation Kind = "validation"
)

// Error is returned by every Client call.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

// Error formats the operation, the message and the wrapped cause.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == kind
}

// MessageOf returns the user-facing message carried by err, or fallback when
// err has none (transport failures never do).
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
