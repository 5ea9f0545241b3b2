package provider

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "name", Reason: "label name is empty"}
	if got, want := err.Error(), "validation: name: label name is empty"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := (&ValidationError{Reason: "bad"}).Error(), "validation: bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("saving labels: %w", err)
	if !IsValidation(wrapped) {
		t.Error("IsValidation should see through wrapping")
	}
	if IsValidation(errors.New("other")) {
		t.Error("IsValidation(other) = true")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Path:  "/s/labels.yaml",
		Cause: fs.ErrPermission,
		Hint:  "Check the file's permissions.",
	}
	want := "config /s/labels.yaml: permission denied\n\nCheck the file's permissions."
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("ConfigError should unwrap to its cause")
	}
	if got := (&ConfigError{Cause: errors.New("x")}).Error(); got != "config: x" {
		t.Errorf("Error() without path = %q", got)
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := &ParseError{Path: "/h/.gshrc", Cause: cause}
	if got, want := err.Error(), "parse /h/.gshrc: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to its cause")
	}
	var pe *ParseError
	if !errors.As(fmt.Errorf("scan: %w", err), &pe) || pe.Path != "/h/.gshrc" {
		t.Error("errors.As should find the ParseError")
	}
}
