package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInit_FileLogging(t *testing.T) {
	tmpDir := t.TempDir()

	err := Init(Options{DebugDir: tmpDir, Stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Debug("scanned file", "path", "/home/u/.gshrc")
	Close()

	today := time.Now().Format("2006-01-02")
	content, err := os.ReadFile(filepath.Join(tmpDir, today+".jsonl"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), "scanned file") {
		t.Errorf("expected debug line in log file, got: %s", content)
	}
}

func TestInit_StderrLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if err := Init(Options{Verbose: tt.verbose, Stderr: &stderr}); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			defer Close()

			Debug("debug message")
			Info("info message")
			Warn("warn message")

			output := stderr.String()
			if got := strings.Contains(output, "debug message"); got != tt.wantDebug {
				t.Errorf("debug on stderr = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(output, "info message"); got != tt.wantDebug {
				t.Errorf("info on stderr = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(output, "warn message") {
				t.Error("warn should always appear on stderr")
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Options{JSONFormat: true, Stderr: &stderr}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	Warn("reading config file", "path", "/x")
	if !strings.HasPrefix(strings.TrimSpace(stderr.String()), "{") {
		t.Errorf("expected JSON output, got: %s", stderr.String())
	}
}

func TestSecretsAreRedacted(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)

	Debug("found key", "provider", "openai", "value", "sk-proj-abcdefghijklmnopqrst", "token", "ab")
	line := out.String()
	if strings.Contains(line, "sk-proj-abcdefghijklmnopqrst") {
		t.Fatalf("raw secret leaked into log: %s", line)
	}
	if !strings.Contains(line, "value=****qrst") {
		t.Errorf("expected redacted value, got: %s", line)
	}
	if !strings.Contains(line, "token=****") {
		t.Errorf("expected short token fully masked, got: %s", line)
	}
	if !strings.Contains(line, "provider=openai") {
		t.Errorf("non-secret attributes should pass through, got: %s", line)
	}
}

func TestSetScanID(t *testing.T) {
	var out bytes.Buffer
	SetOutput(&out)
	SetScanID("3f1c")

	Info("discovery finished")
	if !strings.Contains(out.String(), "scan_id=3f1c") {
		t.Errorf("expected scan_id attribute, got: %s", out.String())
	}
}

func TestSetScanIDRoutesFileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	if err := Init(Options{DebugDir: tmpDir, Stderr: &bytes.Buffer{}}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()
	if got := DebugDir(); got != tmpDir {
		t.Errorf("DebugDir() = %q, want %q", got, tmpDir)
	}

	Debug("loading config")
	SetScanID("0b7e-41aa")
	Debug("discovery finished")
	Close()

	day, err := os.ReadFile(filepath.Join(tmpDir, time.Now().Format("2006-01-02")+".jsonl"))
	if err != nil {
		t.Fatalf("reading day log: %v", err)
	}
	if !strings.Contains(string(day), "loading config") || strings.Contains(string(day), "discovery finished") {
		t.Errorf("day log should hold only pre-scan records, got: %s", day)
	}

	path := ScanLog(tmpDir, "0b7e-41aa")
	if path == "" {
		t.Fatal("expected a scan log")
	}
	scan, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading scan log: %v", err)
	}
	if !strings.Contains(string(scan), "discovery finished") || !strings.Contains(string(scan), `"scan_id":"0b7e-41aa"`) {
		t.Errorf("scan log missing record, got: %s", scan)
	}
}
