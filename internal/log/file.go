package log

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// FileWriter appends JSON records under dir. Records go to the day's file
// (YYYY-MM-DD.jsonl) until a scan is bound with BindScan; from then on they
// go to scan-<id>.jsonl, so every recorded scan has exactly one debug log.
// The latest symlink follows the current file. Files are 0600 because they
// name every config path scanned.
type FileWriter struct {
	dir  string
	now  func() time.Time
	mu   sync.Mutex
	file *os.File
	name string
	scan string
}

// NewFileWriter creates dir if needed and opens today's file.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating debug log dir: %w", err)
	}
	fw := &FileWriter{dir: dir, now: time.Now}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.openLocked(fw.target()); err != nil {
		return nil, err
	}
	return fw, nil
}

// Write implements io.Writer. Unbound writers switch files at midnight.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if name := fw.target(); name != fw.name {
		if err := fw.openLocked(name); err != nil {
			return 0, err
		}
	}
	return fw.file.Write(p)
}

// BindScan sends all further records to the scan's own file.
func (fw *FileWriter) BindScan(id string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.scan = id
	return fw.openLocked(fw.target())
}

// Close closes the current file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

func (fw *FileWriter) target() string {
	if fw.scan != "" {
		return ScanLogName(fw.scan)
	}
	return fw.now().Format(dayLayout) + ".jsonl"
}

func (fw *FileWriter) openLocked(name string) error {
	f, err := os.OpenFile(filepath.Join(fw.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if fw.file != nil {
		fw.file.Close()
	}
	fw.file, fw.name = f, name
	fw.link(name)
	return nil
}

// link points <dir>/latest at target. Failures are ignored.
func (fw *FileWriter) link(target string) {
	latest := filepath.Join(fw.dir, "latest")
	tmp := latest + ".tmp"
	os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, latest)
}

// ScanLogName is the file name holding a bound scan's records.
func ScanLogName(id string) string {
	return "scan-" + id + ".jsonl"
}

// ScanLog returns the debug log written for a scan, or "" when there is none.
func ScanLog(dir, id string) string {
	p := filepath.Join(dir, ScanLogName(id))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

var logName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|scan-[0-9A-Za-z-]+)\.jsonl$`)

// Cleanup removes day and scan logs not modified in the last retentionDays.
func Cleanup(dir string, retentionDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, e := range entries {
		if e.IsDir() || !logName.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}
