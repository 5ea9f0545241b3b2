package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/label"
)

const scanExt = ".scan"

func (s *Store) scanDir() string {
	return filepath.Join(s.dir, "scan")
}

// LoadScanPatterns reads scan/<name>.scan. A missing file yields nil
// patterns and no error.
func (s *Store) LoadScanPatterns(name string) (*label.Patterns, error) {
	path := filepath.Join(s.scanDir(), name+scanExt)
	data, err := readFile(path)
	if err != nil || data == nil {
		return nil, err
	}
	return label.ReadPatterns(name, bytes.NewReader(data))
}

// SaveScanPatterns writes one pattern per line to scan/<name>.scan. The
// patterns are compiled first so an invalid file is never written.
func (s *Store) SaveScanPatterns(name string, patterns []string) error {
	if _, err := label.CompilePatterns(name, patterns); err != nil {
		return err
	}
	data := []byte(strings.Join(patterns, "\n") + "\n")
	return s.withLock(func() error {
		return writeFile(filepath.Join(s.scanDir(), name+scanExt), data)
	})
}

// ScanLabels lists the labels that have a .scan file, sorted.
func (s *Store) ScanLabels() ([]string, error) {
	entries, err := os.ReadDir(s.scanDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading scan dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), scanExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), scanExt))
	}
	sort.Strings(names)
	return names, nil
}
