package core

import "github.com/pkg/errors"

// FieldError attaches a validation message to a single struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports a request or model that failed validation. Fields
// carries per-field messages when the failure is attributable to specific
// fields; Err alone covers whole-object failures such as a taken username.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown flags an error severe enough that the service should stop taking
// traffic. The HTTP error handler checks for it via IsShutdown.
type shutdown struct {
	msg string
}

func NewShutdownError(msg string) error {
	return &shutdown{msg: msg}
}

func (s shutdown) Error() string { return s.msg }

// IsShutdown reports whether err, at its cause, asks for a graceful shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
