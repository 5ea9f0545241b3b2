package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/robottwo/aicred-sub000/internal/credential"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetWriter(&buf)
	t.Cleanup(func() { SetWriter(nil) })
	return &buf
}

func TestMessages(t *testing.T) {
	SetColorEnabled(false)
	tests := []struct {
		name string
		emit func()
		want string
	}{
		{"Warn", func() { Warn("something happened") }, "Warning: something happened\n"},
		{"Warnf", func() { Warnf("skipping %q: %s", "goose", "disabled") }, "Warning: skipping \"goose\": disabled\n"},
		{"Error", func() { Error("something failed") }, "Error: something failed\n"},
		{"Errorf", func() { Errorf("reading %s: %s", "labels.yaml", "denied") }, "Error: reading labels.yaml: denied\n"},
		{"Info", func() { Info("No credentials found.") }, "No credentials found.\n"},
		{"Infof", func() { Infof("Found %d keys", 3) }, "Found 3 keys\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)
			tt.emit()
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColorFunctions(t *testing.T) {
	SetColorEnabled(true)
	defer SetColorEnabled(false)

	if got := Green("ok"); got != "\033[32mok\033[0m" {
		t.Errorf("Green = %q", got)
	}
	if got := Bold("x"); got != "\033[1mx\033[0m" {
		t.Errorf("Bold = %q", got)
	}

	SetColorEnabled(false)
	for _, f := range []func(string) string{Bold, Dim, Green, Red, Yellow, Cyan} {
		if got := f("hello"); got != "hello" {
			t.Errorf("with color disabled got %q, want plain", got)
		}
	}
}

func TestTags(t *testing.T) {
	SetColorEnabled(true)
	defer SetColorEnabled(false)

	if got := OKTag(); got != "\033[32m✓\033[0m" {
		t.Errorf("OKTag() = %q, want green ✓", got)
	}
	if got := FailTag(); got != "\033[31m✗\033[0m" {
		t.Errorf("FailTag() = %q, want red ✗", got)
	}

	SetColorEnabled(false)
	if got := WarnTag(); got != "⚠" {
		t.Errorf("WarnTag() = %q, want plain ⚠", got)
	}
	if got := InfoTag(); got != "ℹ" {
		t.Errorf("InfoTag() = %q, want plain ℹ", got)
	}
}

func TestConfidenceTag(t *testing.T) {
	SetColorEnabled(true)
	defer SetColorEnabled(false)

	tests := []struct {
		c    credential.Confidence
		want string
	}{
		{credential.VeryHigh, "\033[32mvery_high\033[0m"},
		{credential.High, "\033[32mhigh\033[0m"},
		{credential.Medium, "\033[33mmedium\033[0m"},
		{credential.Low, "\033[31mlow\033[0m"},
	}
	for _, tt := range tests {
		if got := ConfidenceTag(tt.c); got != tt.want {
			t.Errorf("ConfidenceTag(%v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestSecretNeverShowsValue(t *testing.T) {
	SetColorEnabled(false)
	if got := Secret("sk-proj-abcdefghijklmnopqrst"); got != "****qrst" {
		t.Errorf("Secret = %q, want ****qrst", got)
	}
}

func TestSection(t *testing.T) {
	SetColorEnabled(false)
	var buf bytes.Buffer
	Section(&buf, "Labels")
	if got := buf.String(); got != "Labels\n──────\n" {
		t.Errorf("Section = %q", got)
	}
}

func TestNO_COLOR(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	f, err := os.CreateTemp(t.TempDir(), "ui-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if detectColor(f) {
		t.Error("detectColor should return false when NO_COLOR is set")
	}
}

func TestWarnColoredPrefix(t *testing.T) {
	buf := capture(t)
	SetColorEnabled(true)
	defer SetColorEnabled(false)

	Warn("test message")
	if got, want := buf.String(), "\033[33mWarning:\033[0m test message\n"; got != want {
		t.Errorf("Warn with color = %q, want %q", got, want)
	}
}
