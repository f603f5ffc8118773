// Package apperr defines the client's error taxonomy and converts errors into
// the text shown to the user. Every remote failure is caught at the call site
// and rendered through UserMessage; none are allowed to escape as panics.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation.
type Kind int

const (
	// KindUnknown is anything not classified below.
	KindUnknown Kind = iota
	// KindValidation is a local, pre-network failure (missing required field).
	KindValidation
	// KindAuth is a 401/403 from the server or a missing session.
	KindAuth
	// KindRemote is a transient network or server failure.
	KindRemote
	// KindOrphan is an upload that succeeded whose dependent create failed.
	KindOrphan
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRemote:
		return "remote"
	case KindOrphan:
		return "orphan"
	default:
		return "unknown"
	}
}

type kinded interface {
	Kind() Kind
}

type messenger interface {
	UserMessage() string
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Kind implements the classification hook.
func (e *ValidationError) Kind() Kind { return KindValidation }

// UserMessage returns the inline text for the form.
func (e *ValidationError) UserMessage() string { return e.Message }

// Validation returns a new validation error.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// KindOf walks the error chain and returns the first classification found.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// UserMessage converts err into user-visible text. Errors that carry their
// own message (validation errors, server {error}/{message} bodies) use it;
// everything else falls back to the given string.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var m messenger
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
