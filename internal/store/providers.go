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
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

// storedKey is an API key as persisted. Keys are kept in plain text; the
// file mode is the only protection.
type storedKey struct {
	Value      string                `yaml:"value"`
	Source     string                `yaml:"source,omitempty"`
	Confidence credential.Confidence `yaml:"confidence,omitempty"`
}

type providerFile struct {
	Version      string            `yaml:"version"`
	DisplayName  string            `yaml:"display_name,omitempty"`
	ProviderType string            `yaml:"provider_type"`
	BaseURL      string            `yaml:"base_url,omitempty"`
	Keys         []storedKey       `yaml:"keys,omitempty"`
	Models       []provider.Model  `yaml:"models,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
	Active       *bool             `yaml:"active,omitempty"`
	CreatedAt    time.Time         `yaml:"created_at"`
	UpdatedAt    time.Time         `yaml:"updated_at"`
}

func (s *Store) providersDir() string {
	return filepath.Join(s.dir, "providers")
}

func (s *Store) providerPath(id string) string {
	return filepath.Join(s.providersDir(), id+".yaml")
}

// LoadProviders reads every providers/<id>.yaml, sorted by id.
func (s *Store) LoadProviders() ([]*provider.Instance, error) {
	entries, err := os.ReadDir(s.providersDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading providers dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(ids)

	out := make([]*provider.Instance, 0, len(ids))
	for _, id := range ids {
		in, err := s.LoadProvider(id)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := provider.ValidateSet(out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadProvider reads one provider document. The first stored key becomes
// the instance's API key.
func (s *Store) LoadProvider(id string) (*provider.Instance, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	path := s.providerPath(id)
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, id)
	}
	var f providerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &provider.ConfigError{Path: path, Cause: err}
	}
	if err := checkVersion(path, f.Version); err != nil {
		return nil, err
	}

	in := provider.NewInstance(id, f.ProviderType)
	if f.DisplayName != "" {
		in.DisplayName = f.DisplayName
	}
	in.BaseURL = f.BaseURL
	in.Models = f.Models
	for k, v := range f.Metadata {
		in.Metadata[k] = v
	}
	if f.Active != nil {
		in.Active = *f.Active
	}
	if !f.CreatedAt.IsZero() {
		in.CreatedAt = f.CreatedAt
	}
	if !f.UpdatedAt.IsZero() {
		in.UpdatedAt = f.UpdatedAt
	}
	if len(f.Keys) > 0 {
		in.SetKey(f.Keys[0].Value)
		in.Source = f.Keys[0].Source
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}

// SaveProvider writes in to providers/<id>.yaml. An existing document is
// merged under the lock: values in in win, and models and metadata keys it
// lacks are kept from the saved copy along with the creation time.
func (s *Store) SaveProvider(in *provider.Instance) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := validID(in.ID); err != nil {
		return err
	}
	return s.withLock(func() error {
		merged := in
		created := in.CreatedAt
		prev, err := s.LoadProvider(in.ID)
		switch {
		case err == nil:
			merged = provider.Merge(in, prev)[0]
			if !in.HasAPIKey() && prev.HasAPIKey() {
				merged.Source = prev.Source
			}
			created = prev.CreatedAt
		case !errors.Is(err, provider.ErrNotFound):
			return err
		}
		data, err := encodeProvider(merged, created)
		if err != nil {
			return err
		}
		return writeFile(s.providerPath(in.ID), data)
	})
}

func encodeProvider(in *provider.Instance, created time.Time) ([]byte, error) {
	active := in.Active
	f := providerFile{
		Version:      CurrentVersion,
		DisplayName:  in.DisplayName,
		ProviderType: in.ProviderType,
		BaseURL:      in.BaseURL,
		Models:       in.Models,
		Metadata:     in.Metadata,
		Active:       &active,
		CreatedAt:    created,
		UpdatedAt:    time.Now().UTC(),
	}
	if in.HasAPIKey() {
		f.Keys = []storedKey{{
			Value:      in.Key(),
			Source:     in.Source,
			Confidence: credential.ConfidenceFor(in.Key()),
		}}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encoding provider %s: %w", in.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding provider %s: %w", in.ID, err)
	}
	return buf.Bytes(), nil
}

// DeleteProvider removes providers/<id>.yaml.
func (s *Store) DeleteProvider(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.withLock(func() error {
		err := os.Remove(s.providerPath(id))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", provider.ErrNotFound, id)
		}
		return err
	})
}

// validID rejects ids that would escape the providers directory.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return &provider.ValidationError{Field: "id", Reason: fmt.Sprintf("invalid provider id %q", id)}
	}
	return nil
}
