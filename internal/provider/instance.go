// Package provider assembles discovered credentials into provider instances
// and optionally enriches their models from a model registry.
package provider

import (
	"fmt"
	"strings"
	"time"
)

// Model is one model exposed by a provider instance. Enrichment fields are
// empty unless a registry knew the model.
type Model struct {
	ID                   string   `yaml:"id" json:"id"`
	Name                 string   `yaml:"name" json:"name"`
	ContextWindow        int      `yaml:"context_window,omitempty" json:"context_window,omitempty"`
	InputCostPerMillion  float64  `yaml:"input_cost_per_million,omitempty" json:"input_cost_per_million,omitempty"`
	OutputCostPerMillion float64  `yaml:"output_cost_per_million,omitempty" json:"output_cost_per_million,omitempty"`
	Capabilities         []string `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
}

// Instance is a configured provider: an endpoint, an optional key, models,
// and settings.
type Instance struct {
	ID           string            `yaml:"id" json:"id"`
	DisplayName  string            `yaml:"display_name" json:"display_name"`
	ProviderType string            `yaml:"provider_type" json:"provider_type"`
	BaseURL      string            `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKey       *string           `yaml:"-" json:"-"`
	Models       []Model           `yaml:"models,omitempty" json:"models,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Source       string            `yaml:"source,omitempty" json:"source,omitempty"`
	Active       bool              `yaml:"active" json:"active"`
	CreatedAt    time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `yaml:"updated_at" json:"updated_at"`
}

// NewInstance returns an active instance with timestamps set.
func NewInstance(id, providerType string) *Instance {
	now := time.Now().UTC()
	return &Instance{
		ID:           id,
		DisplayName:  providerType,
		ProviderType: providerType,
		Metadata:     map[string]string{},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasAPIKey reports whether a non-empty key is set.
func (i *Instance) HasAPIKey() bool {
	return i.APIKey != nil && *i.APIKey != ""
}

// Key returns the API key or "".
func (i *Instance) Key() string {
	if i.APIKey == nil {
		return ""
	}
	return *i.APIKey
}

// SetKey sets the API key.
func (i *Instance) SetKey(k string) {
	i.APIKey = &k
}

// HasModel reports whether id is one of the instance's models.
func (i *Instance) HasModel(id string) bool {
	for _, m := range i.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// AddModel appends a model unless one with the same id exists.
func (i *Instance) AddModel(m Model) bool {
	if i.HasModel(m.ID) {
		return false
	}
	i.Models = append(i.Models, m)
	return true
}

// ModelIDs returns the model ids in order.
func (i *Instance) ModelIDs() []string {
	ids := make([]string, len(i.Models))
	for n, m := range i.Models {
		ids[n] = m.ID
	}
	return ids
}

// MetadataValue looks up a metadata key ignoring case.
func (i *Instance) MetadataValue(key string) (string, bool) {
	if v, ok := i.Metadata[key]; ok {
		return v, true
	}
	for k, v := range i.Metadata {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Validate checks required fields.
func (i *Instance) Validate() error {
	if i.ID == "" {
		return &ValidationError{Field: "id", Reason: "instance id is empty"}
	}
	if i.ProviderType == "" {
		return &ValidationError{Field: "provider_type", Reason: fmt.Sprintf("instance %q has no provider type", i.ID)}
	}
	for n, m := range i.Models {
		if m.ID == "" {
			return &ValidationError{Field: "models", Reason: fmt.Sprintf("instance %q model %d has an empty id", i.ID, n)}
		}
	}
	return nil
}

// ValidateSet validates every instance and rejects duplicate ids.
func ValidateSet(instances []*Instance) error {
	seen := make(map[string]bool, len(instances))
	for _, inst := range instances {
		if err := inst.Validate(); err != nil {
			return err
		}
		if seen[inst.ID] {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate instance %q", inst.ID)}
		}
		seen[inst.ID] = true
	}
	return nil
}

// Find returns the instance with the given id.
func Find(instances []*Instance, id string) (*Instance, error) {
	for _, inst := range instances {
		if inst.ID == id {
			return inst, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
