package store

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/robottwo/aicred-sub000/internal/label"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

type labelsFile struct {
	Version string        `yaml:"version"`
	Labels  []label.Label `yaml:"labels"`
}

func (s *Store) labelsPath() string {
	return filepath.Join(s.dir, "labels.yaml")
}

// LoadLabels reads labels.yaml. A missing file yields no labels and the
// zero Token.
func (s *Store) LoadLabels() ([]label.Label, Token, error) {
	data, err := readFile(s.labelsPath())
	if err != nil || data == nil {
		return nil, "", err
	}
	labels, err := s.decodeLabels(data)
	if err != nil {
		return nil, "", err
	}
	return labels, tokenOf(data), nil
}

func (s *Store) decodeLabels(data []byte) ([]label.Label, error) {
	path := s.labelsPath()
	var f labelsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		if provider.IsValidation(err) {
			return nil, err
		}
		return nil, &provider.ConfigError{Path: path, Cause: err}
	}
	if err := checkVersion(path, f.Version); err != nil {
		return nil, err
	}
	if err := label.ValidateSet(f.Labels); err != nil {
		return nil, err
	}
	return f.Labels, nil
}

// SaveLabels writes labels if labels.yaml still matches tok, and returns
// the new token.
func (s *Store) SaveLabels(labels []label.Label, tok Token) (Token, error) {
	if err := label.ValidateSet(labels); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(labelsFile{Version: CurrentVersion, Labels: labels}); err != nil {
		return "", fmt.Errorf("encoding labels: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding labels: %w", err)
	}
	data := buf.Bytes()

	err := s.withLock(func() error {
		current, err := readFile(s.labelsPath())
		if err != nil {
			return err
		}
		var have Token
		if current != nil {
			have = tokenOf(current)
		}
		if have != tok {
			return ErrConflict
		}
		return writeFile(s.labelsPath(), data)
	})
	if err != nil {
		return "", err
	}
	return tokenOf(data), nil
}

// SetLabel assigns name to target and saves.
func (s *Store) SetLabel(name string, target label.Tuple) (label.Label, error) {
	labels, tok, err := s.LoadLabels()
	if err != nil {
		return label.Label{}, err
	}
	labels = label.Assign(labels, name, target)
	if _, err := s.SaveLabels(labels, tok); err != nil {
		return label.Label{}, err
	}
	l, _ := label.Find(labels, name)
	return l, nil
}

// UnsetLabel removes name and saves.
func (s *Store) UnsetLabel(name string) error {
	labels, tok, err := s.LoadLabels()
	if err != nil {
		return err
	}
	labels, ok := label.Remove(labels, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrLabelNotFound, name)
	}
	_, err = s.SaveLabels(labels, tok)
	return err
}
