// Package errors gives stackbar failures a machine-readable [Code]. The CLI
// prints [UserMessage] and the HTTP service derives its status from the code
// with [HTTPStatus], so neither matches on error text.
//
// Codes starting with INVALID_ reject caller input. NOT_FOUND and EXPIRED
// refer to chart handles. RENDER_FAILED and CACHE_ERROR come from backends.
//
//	err := errors.New(errors.ErrCodeInvalidSeries, "record %d (%q) has no series", i, name)
//	if errors.Is(err, errors.ErrCodeInvalidSeries) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies an [Error].
type Code string

const (
	// bad input; HTTP 400
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidRecord   Code = "INVALID_RECORD"
	ErrCodeInvalidSeries   Code = "INVALID_SERIES"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidPalette  Code = "INVALID_PALETTE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidDataset  Code = "INVALID_DATASET"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// chart handles and quotas
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeExpired     Code = "EXPIRED"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeRenderFailed Code = "RENDER_FAILED"
	ErrCodeCache        Code = "CACHE_ERROR"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
)

// Error carries a [Code], a message for people and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a Sprintf-formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is [New] with a cause, which stays reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost [*Error] in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost [*Error] without its code
// or cause, or err.Error() for foreign errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HTTPStatus maps err to the status the HTTP service answers with. Errors
// without a code are internal.
func HTTPStatus(err error) int {
	code := GetCode(err)
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeExpired:
		return http.StatusGone
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if strings.HasPrefix(string(code), "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
