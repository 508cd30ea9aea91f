package errors

import (
	stderrors "errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ASError is the interface implemented by the engine's propagating failures.
type ASError interface {
	error         // Embed the standard error interface
	Kind() string // e.g., "Type", "ActionLimit"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// TypeError signals a failed coercion: an object lacks usable valueOf/toString
// members, or a conversion produced another object.
type TypeError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *TypeError) Error() string   { return fmt.Sprintf("TypeError: %s", e.Msg) }
func (e *TypeError) Kind() string    { return "Type" }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }

// ActionLimitError is raised when a prototype chain walk exceeds the hop cap.
// It is distinct from "not found" and is meant to reach the interpreter loop.
type ActionLimitError struct {
	Msg   string
	Limit int
	Cause error
}

func (e *ActionLimitError) Error() string {
	return fmt.Sprintf("ActionLimit: %s (limit %d)", e.Msg, e.Limit)
}
func (e *ActionLimitError) Kind() string    { return "ActionLimit" }
func (e *ActionLimitError) Message() string { return e.Msg }
func (e *ActionLimitError) Unwrap() error   { return e.Cause }

// --- Helpers for creating errors ---

// NewTypeError returns a TypeError annotated with the caller's stack.
func NewTypeError(format string, args ...any) error {
	return pkgerrors.WithStack(&TypeError{Msg: fmt.Sprintf(format, args...)})
}

// NewActionLimitError returns an ActionLimitError annotated with the caller's stack.
func NewActionLimitError(msg string, limit int) error {
	return pkgerrors.WithStack(&ActionLimitError{Msg: msg, Limit: limit})
}

// IsTypeError reports whether err carries a TypeError anywhere in its chain.
func IsTypeError(err error) bool {
	var te *TypeError
	return stderrors.As(err, &te)
}

// IsActionLimit reports whether err carries an ActionLimitError.
func IsActionLimit(err error) bool {
	var le *ActionLimitError
	return stderrors.As(err, &le)
}

// AsASError extracts the engine error from err, if any.
func AsASError(err error) (ASError, bool) {
	var te *TypeError
	if stderrors.As(err, &te) {
		return te, true
	}
	var le *ActionLimitError
	if stderrors.As(err, &le) {
		return le, true
	}
	return nil, false
}
