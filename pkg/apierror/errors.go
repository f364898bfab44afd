package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failed backend interaction.
type Code string

const (
	CodeAuth       Code = "AUTH"
	CodeValidation Code = "VALIDATION"
	CodeConflict   Code = "CONFLICT"
	CodeNotFound   Code = "NOT_FOUND"
	CodeNetwork    Code = "NETWORK"
	CodeTimeout    Code = "TIMEOUT"
	CodeServer     Code = "SERVER"
)

// Error is the error type returned by every API client call. Status is the
// HTTP status code when the backend answered, 0 for transport failures.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two errors by code so callers can use errors.Is with a sentinel.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// FromStatus maps an HTTP response status to the client error taxonomy.
func FromStatus(status int, message string) *Error {
	var code Code
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = CodeAuth
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusConflict:
		code = CodeConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		code = CodeValidation
	case status >= 500:
		code = CodeServer
	default:
		code = CodeServer
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Code: code, Message: message, Status: status}
}

// CodeOf extracts the code from an error chain, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// StatusOf extracts the HTTP status from an error chain, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
