package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileWriter_Write(t *testing.T) {
	tmpDir := t.TempDir()

	fw, err := NewFileWriter(filepath.Join(tmpDir, "debug"))
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	if _, err := fw.Write([]byte(`{"msg":"test"}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	logFile := filepath.Join(tmpDir, "debug", today+".jsonl")
	info, err := os.Stat(logFile)
	if err != nil {
		t.Fatalf("expected log file %s to exist: %v", logFile, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log file mode = %04o, want 0600", perm)
	}

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), `{"msg":"test"}`) {
		t.Errorf("expected content to contain test message, got: %s", content)
	}
}

func TestFileWriter_DayRollover(t *testing.T) {
	tmpDir := t.TempDir()
	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	fw.now = func() time.Time { return time.Date(2031, 1, 2, 0, 0, 1, 0, time.Local) }
	if _, err := fw.Write([]byte("x\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "2031-01-02.jsonl")); err != nil {
		t.Errorf("expected rollover file: %v", err)
	}
}

func TestFileWriter_BindScan(t *testing.T) {
	tmpDir := t.TempDir()
	fw, err := NewFileWriter(tmpDir)
	if err != nil {
		t.Fatalf("NewFileWriter failed: %v", err)
	}
	defer fw.Close()

	if ScanLog(tmpDir, "9d2a") != "" {
		t.Error("ScanLog should be empty before the scan is bound")
	}
	if err := fw.BindScan("9d2a"); err != nil {
		t.Fatalf("BindScan failed: %v", err)
	}
	if _, err := fw.Write([]byte("bound\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	target, err := os.Readlink(filepath.Join(tmpDir, "latest"))
	if err != nil {
		t.Fatalf("reading symlink: %v", err)
	}
	if target != "scan-9d2a.jsonl" {
		t.Errorf("latest -> %s, want scan-9d2a.jsonl", target)
	}
	content, err := os.ReadFile(ScanLog(tmpDir, "9d2a"))
	if err != nil {
		t.Fatalf("reading scan log: %v", err)
	}
	if string(content) != "bound\n" {
		t.Errorf("scan log = %q", content)
	}
}

func TestCleanup(t *testing.T) {
	tmpDir := t.TempDir()
	old := filepath.Join(tmpDir, "2020-01-01.jsonl")
	oldScan := filepath.Join(tmpDir, ScanLogName("1a2b"))
	recent := filepath.Join(tmpDir, ScanLogName("3c4d"))
	other := filepath.Join(tmpDir, "notes.txt")
	for _, p := range []string{old, oldScan, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().AddDate(0, 0, -20)
	for _, p := range []string{old, oldScan, other} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	Cleanup(tmpDir, 7)

	for _, p := range []string{old, oldScan} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", filepath.Base(p))
		}
	}
	for _, p := range []string{recent, other} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should have been kept: %v", p, err)
		}
	}
}
