// Package derr defines coded errors for the drawball SDK. Codes are stable
// categories the fallback logic and CLI switch on; the wrapped cause keeps the
// HTTP status / body detail for display.
package derr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a stable error category that callers can switch on.
type Code string

const (
	CodeUnknown      Code = "unknown"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeExpiredToken Code = "expired_token"
	CodeUnavailable  Code = "unavailable"
)

// Error is a simple value type that carries a Code plus the underlying error.
type Error struct {
	Code Code
	err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// New wraps an error with the provided code. If err is nil a nil is returned.
func New(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, err: err}
}

// Newf wraps a formatted message with the provided code.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, err: fmt.Errorf(format, args...)}
}

// IsCode helps callers compare codes without type assertions. It unwraps so
// codes survive further fmt.Errorf("%w") wrapping.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// FromStatus maps a non-2xx HTTP response to a coded error carrying the
// status and the raw body text, which is all the upstream BaaS gives us.
func FromStatus(status int, body string) error {
	code := CodeUnknown
	switch status {
	case http.StatusUnauthorized:
		code = CodeUnauthorized
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound:
		code = CodeNotFound
	case http.StatusConflict:
		code = CodeConflict
	}
	return &Error{Code: code, err: fmt.Errorf("status %d: %s", status, body)}
}
