package bapp

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrRender      = errors.New("render failed")
	ErrStorage     = errors.New("storage failure")
	ErrPersistence = errors.New("persistence failure")
)

// Error carries a human-readable message together with its kind and cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds an *Error of the given kind.
func NewError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Message returns the human-readable part of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detail returns the underlying cause text, if any.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Err == nil {
			return ""
		}
		return e.Err.Error()
	}
	return err.Error()
}
