// Package toolerr defines the structured errors returned to MCP clients.
// Every failure of a tool call is reduced to a Code and a human readable
// message, so the calling assistant can decide whether to retry, ask the
// user for a credential, or give up.
package toolerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code is a short machine-readable error class.
type Code string

const (
	// InvalidArgument is a caller error, never retried.
	InvalidArgument Code = "INVALID_ARGUMENT"
	// AuthError is returned when the API credential is missing or rejected.
	AuthError Code = "AUTH_ERROR"
	// RateLimited is returned on HTTP 429, the caller should back off.
	RateLimited Code = "RATE_LIMITED"
	// Timeout is returned when the API did not respond within the bound.
	Timeout Code = "TIMEOUT"
	// UpstreamError is any other non-2xx response or malformed payload.
	UpstreamError Code = "UPSTREAM_ERROR"
	// FormattingImpossible marks a response that lacked expected fields.
	FormattingImpossible Code = "FORMATTING_IMPOSSIBLE"
	// Internal is an unexpected failure inside the server.
	Internal Code = "INTERNAL"
)

// Retryable reports whether a call failed with this code may succeed later.
func (c Code) Retryable() bool {
	return c == RateLimited || c == Timeout || c == UpstreamError
}

// Error is a tool call failure.
type Error struct {
	Code Code `json:"code"`
	// Field names the offending argument for InvalidArgument
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Status is the HTTP status returned by the API, if any
	Status int `json:"status,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// String returns the message prefixed with the code.
func (e *Error) String() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New returns an error with the code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf returns an error with the code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgf returns InvalidArgument naming the offending field.
func InvalidArgf(field, format string, args ...any) *Error {
	return &Error{
		Code:    InvalidArgument,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithStatus returns an error with the code, HTTP status and message.
func WithStatus(code Code, status int, msg string) *Error {
	return &Error{Code: code, Status: status, Message: msg}
}

// As returns the first *Error in the chain of err.
func As(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// CodeOf returns the Code of err, or Internal if err carries none.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if te, ok := As(err); ok {
		return te.Code
	}
	return Internal
}

// Is reports whether err carries the code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// From converts any error to *Error, preserving the code and using the full
// wrapped message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	te, ok := As(err)
	if !ok {
		return &Error{Code: Internal, Message: err.Error()}
	}
	if msg := err.Error(); msg != te.Message {
		cp := *te
		cp.Message = msg
		return &cp
	}
	return te
}
