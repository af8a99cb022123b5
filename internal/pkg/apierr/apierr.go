package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Stable error codes returned to API callers.
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeMissingRequiredAssets  = "MISSING_REQUIRED_ASSETS"
	CodeInvalidScheduleInstant = "INVALID_SCHEDULE_INSTANT"
	CodeInvalidTransition      = "INVALID_TRANSITION"
	CodeConflict               = "CONFLICT"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInternal               = "INTERNAL_ERROR"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
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

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

type notFound struct{ what string }

func (e notFound) Error() string {
	if e.what == "" {
		return "Not found"
	}
	return strings.ToUpper(e.what[:1]) + e.what[1:] + " not found"
}

func (notFound) Is(target error) bool { return target == ErrNotFound }

// NotFound reports a missing resource as "<What> not found".
func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, notFound{what: what})
}

// From unwraps err into an *Error, mapping bare sentinels and falling back to 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, ErrInvalidArgument):
		return New(http.StatusBadRequest, CodeValidation, err)
	default:
		return New(http.StatusInternalServerError, CodeInternal, err)
	}
}
