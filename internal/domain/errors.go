package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the API layer can map them to status codes
type ErrorKind string

const (
	KindUnauthorized     ErrorKind = "unauthorized"
	KindForbidden        ErrorKind = "forbidden"
	KindNotFound         ErrorKind = "not_found"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindValidationFailed ErrorKind = "validation_failed"
	KindConflict         ErrorKind = "conflict"
	KindInfrastructure   ErrorKind = "infrastructure"
)

// Error is the error type returned by services
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
	// Details carries structured context such as failed checks or blocking asset usages
	Details any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err. Untyped errors are infrastructure failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// DetailsOf returns the structured details attached to err, if any
func DetailsOf(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func ValidationFailed(msg string, checks []CheckResult) error {
	return &Error{Kind: KindValidationFailed, Message: msg, Details: checks}
}

func Conflict(msg string, details any) error {
	return &Error{Kind: KindConflict, Message: msg, Details: details}
}

func Infrastructure(msg string, err error) error {
	return &Error{Kind: KindInfrastructure, Message: msg, Err: err}
}
