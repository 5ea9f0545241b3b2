package term

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegularFileIsNotTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Error("a regular file should not be a terminal")
	}
	if got := Width(f, 100); got != 100 {
		t.Errorf("Width = %d, want fallback 100", got)
	}
}
