// Package term reports on the terminal attached to a file.
package term

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if the file is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width, or fallback when f is not a terminal
// or its size cannot be determined.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
