package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "not_found"
	CodeInvalidState = "invalid_state"
	CodeForbidden    = "forbidden"
	CodeUnauthorized = "unauthorized"
	CodeBadRequest   = "bad_request"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

func InvalidState(msg string) *Error {
	return New(http.StatusBadRequest, CodeInvalidState, errors.New(msg))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func BadRequest(msg string) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, errors.New(msg))
}

// From extracts the *Error from err's chain, or nil when err is not
// a domain error and should fall through to the generic 500 handler.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

func IsCode(err error, code string) bool {
	ae := From(err)
	return ae != nil && ae.Code == code
}
