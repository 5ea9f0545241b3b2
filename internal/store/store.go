// Package store persists labels, provider instances and label scan
// patterns as YAML documents under a single directory.
//
// Layout:
//
//	<dir>/labels.yaml
//	<dir>/providers/<id>.yaml
//	<dir>/scan/<label>.scan
//
// Writers never overwrite a labels file they did not read: LoadLabels
// returns a Token and SaveLabels fails with ErrConflict when the file has
// changed since.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

// CurrentVersion is written into every document.
const CurrentVersion = "1.0"

var (
	// ErrConflict is returned when labels.yaml changed after it was loaded.
	ErrConflict = errors.New("labels were modified by another process; reload and retry")
	// ErrLabelNotFound is returned by UnsetLabel for unknown names.
	ErrLabelNotFound = errors.New("label not found")
)

// Token identifies one revision of a document. The zero Token means the
// document did not exist.
type Token string

func tokenOf(data []byte) Token {
	sum := sha256.Sum256(data)
	return Token(hex.EncodeToString(sum[:]))
}

// Store is a directory of YAML documents.
type Store struct {
	dir string
}

// Open returns a store rooted at dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// DefaultDir returns $AICRED_HOME, else $XDG_CONFIG_HOME/aicred, else
// ~/.config/aicred.
func DefaultDir() (string, error) {
	if dir := os.Getenv("AICRED_HOME"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aicred"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "aicred"), nil
}

// checkVersion accepts any 1.x document. An empty version is read as 1.0.
func checkVersion(path, v string) error {
	if v == "" {
		return nil
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return &provider.ConfigError{Path: path, Cause: fmt.Errorf("invalid version %q: %w", v, err)}
	}
	if sv.Major() != 1 {
		return &provider.ConfigError{
			Path:  path,
			Cause: fmt.Errorf("unsupported document version %s", v),
			Hint:  "This file was written by a newer release. Upgrade aicred to read it.",
		}
	}
	return nil
}

// readFile returns nil data and no error when path does not exist.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// writeFile replaces path atomically with a 0600 file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// withLock runs fn while holding the store's exclusive lock file.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, ".lock"), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}
	defer f.Close()
	unlock, err := lockFile(f)
	if err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer unlock()
	return fn()
}
