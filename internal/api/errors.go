package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"printshop/internal/apperr"
)

// ErrNoToken is returned by authenticated calls when no session is active.
var ErrNoToken error = &noTokenError{}

type noTokenError struct{}

func (*noTokenError) Error() string { return "not authenticated" }
func (*noTokenError) Kind() apperr.Kind { return apperr.KindAuth }
func (*noTokenError) UserMessage() string { return "" }

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	// Message is the server's "error" field, else its "message" field.
	Message string
	Body    []byte
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Message: extractMessage(body), Body: body}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Kind classifies 401/403 as auth failures, everything else as remote.
func (e *APIError) Kind() apperr.Kind {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return apperr.KindAuth
	}
	return apperr.KindRemote
}

// UserMessage returns the server supplied message, if any.
func (e *APIError) UserMessage() string { return e.Message }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// TransportError wraps a failure to reach the service or read its reply.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() apperr.Kind { return apperr.KindRemote }

func extractMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s := rawString(payload.Error); s != "" {
		return s
	}
	return rawString(payload.Message)
}

// rawString accepts only JSON strings; objects and numbers are ignored.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
