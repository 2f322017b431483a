package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Workflow errors. The first four reject a transition before any mutation;
// the last two only affect the notification attached to a committed
// transition.
var (
	ErrUnknownStatus     = New("UNKNOWN_STATUS", http.StatusBadRequest, "unknown status for workflow")
	ErrIllegalTransition = New("ILLEGAL_TRANSITION", http.StatusUnprocessableEntity, "transition not allowed from current status")
	ErrTerminalState     = New("TERMINAL_STATE", http.StatusConflict, "entity is in a terminal status")
	ErrGuardNotSatisfied = New("GUARD_NOT_SATISFIED", http.StatusPreconditionFailed, "transition guard not satisfied")
	ErrDocumentFinalized = New("DOCUMENT_FINALIZED", http.StatusConflict, "document already reviewed")

	ErrNoTemplate      = New("NO_TEMPLATE", http.StatusNotFound, "no template for transition")
	ErrMissingVariable = New("MISSING_VARIABLE", http.StatusUnprocessableEntity, "template variable missing from context")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target. Used to branch on
// workflow verdicts without comparing messages.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
