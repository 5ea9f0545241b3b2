package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a provider instance does not exist.
var ErrNotFound = errors.New("provider instance not found")

// ValidationError reports a business-rule violation such as an empty
// required field or a duplicate name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ConfigError reports a structural failure converting or loading a
// configuration document. Path may be empty.
type ConfigError struct {
	Path  string
	Cause error
	Hint  string
}

func (e *ConfigError) Error() string {
	msg := "config"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Cause.Error()
	if e.Hint != "" {
		msg += "\n\n" + e.Hint
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ParseError reports malformed source content. Scanners recover from it
// locally and return empty results.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
