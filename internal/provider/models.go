package provider

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robottwo/aicred-sub000/internal/log"
)

// ModelInfo is registry data used to enrich a discovered model.
type ModelInfo struct {
	ID                   string   `yaml:"id"`
	Name                 string   `yaml:"name"`
	ContextWindow        int      `yaml:"context_window"`
	InputCostPerMillion  float64  `yaml:"input_cost_per_million"`
	OutputCostPerMillion float64  `yaml:"output_cost_per_million"`
	Capabilities         []string `yaml:"capabilities"`
}

// ModelRegistry looks up model metadata. Unknown models are not an error.
type ModelRegistry interface {
	Lookup(id string) (ModelInfo, bool)
}

// StaticRegistry is a ModelRegistry backed by a fixed catalog.
type StaticRegistry struct {
	models map[string]ModelInfo
}

type catalogFile struct {
	Models []ModelInfo `yaml:"models"`
}

// LoadRegistry reads a YAML catalog of the form {models: [...]}.
func LoadRegistry(r io.Reader) (*StaticRegistry, error) {
	var cf catalogFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cf); err != nil && err != io.EOF {
		return nil, &ConfigError{Cause: fmt.Errorf("decoding model catalog: %w", err)}
	}
	reg := &StaticRegistry{models: make(map[string]ModelInfo, len(cf.Models))}
	for i, m := range cf.Models {
		if m.ID == "" {
			return nil, &ValidationError{Field: "models", Reason: fmt.Sprintf("catalog entry %d has no id", i)}
		}
		if _, dup := reg.models[m.ID]; dup {
			return nil, &ValidationError{Field: "models", Reason: fmt.Sprintf("duplicate catalog model %q", m.ID)}
		}
		reg.models[m.ID] = m
	}
	return reg, nil
}

// Lookup finds id exactly, then by the part after the first '/', so
// "openrouter/gpt-4" resolves like "gpt-4".
func (r *StaticRegistry) Lookup(id string) (ModelInfo, bool) {
	if r == nil {
		return ModelInfo{}, false
	}
	if m, ok := r.models[id]; ok {
		return m, true
	}
	if _, base, ok := strings.Cut(id, "/"); ok {
		m, ok := r.models[base]
		return m, ok
	}
	return ModelInfo{}, false
}

// Len returns the number of catalog entries.
func (r *StaticRegistry) Len() int {
	return len(r.models)
}

//go:embed catalog/models.yaml
var defaultCatalog []byte

var (
	defaultOnce sync.Once
	defaultReg  *StaticRegistry
)

// DefaultRegistry returns the embedded catalog.
func DefaultRegistry() *StaticRegistry {
	defaultOnce.Do(func() {
		reg, err := LoadRegistry(bytes.NewReader(defaultCatalog))
		if err != nil {
			log.Warn("loading embedded model catalog", "error", err)
			reg = &StaticRegistry{models: map[string]ModelInfo{}}
		}
		defaultReg = reg
	})
	return defaultReg
}
