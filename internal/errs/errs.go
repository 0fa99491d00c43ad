// Package errs defines the error taxonomy shared by the whole harness.
//
// Every failure surfaced to a caller carries a Code. Commands map codes to
// exit statuses; runners use codes to decide whether an error is fatal for
// the whole run or only for a single sample.
package errs

import (
	"errors"
	"fmt"
)

// Code classifies an error for observability and propagation decisions.
type Code string

const (
	// NotFound covers missing files and missing config sections.
	NotFound Code = "not_found"
	// Parse covers malformed JSON/YAML/TOML input.
	Parse Code = "parse"
	// Validate covers dataset or config invariant violations.
	Validate Code = "validate"
	// Scorer covers model construction and per-sample inference failures.
	Scorer Code = "scorer"
	// Numerical covers non-finite values during Platt training.
	Numerical Code = "numerical"
	// Cancelled means the host aborted the run.
	Cancelled Code = "cancelled"
	// Internal is an unexpected condition, treated as fatal.
	Internal Code = "internal"
)

// Error is the concrete error type carrying a Code.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the Code from err, walking the wrap chain.
// Errors without a Code are reported as Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
