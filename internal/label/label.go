package label

import (
	"fmt"
	"regexp"
	"time"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Label binds a globally unique name to a provider:model target.
type Label struct {
	Name        string            `yaml:"name" json:"name"`
	Target      Tuple             `yaml:"target" json:"target"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Color       string            `yaml:"color,omitempty" json:"color,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `yaml:"updated_at" json:"updated_at"`
}

// New creates a label with both timestamps set to now.
func New(name string, target Tuple) Label {
	now := time.Now().UTC()
	return Label{Name: name, Target: target, CreatedAt: now, UpdatedAt: now}
}

// Validate checks the name and target.
func (l Label) Validate() error {
	if l.Name == "" {
		return &provider.ValidationError{Field: "name", Reason: "label name is empty"}
	}
	if !namePattern.MatchString(l.Name) {
		return &provider.ValidationError{Field: "name", Reason: fmt.Sprintf("label name %q may only contain letters, digits, '-' and '_'", l.Name)}
	}
	if l.Target.Provider == "" || l.Target.Model == "" {
		return &provider.ValidationError{Field: "target", Reason: fmt.Sprintf("label %q needs a provider:model target", l.Name)}
	}
	return nil
}

// ValidateSet validates every label and rejects duplicate names.
func ValidateSet(labels []Label) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if err := l.Validate(); err != nil {
			return err
		}
		if seen[l.Name] {
			return &provider.ValidationError{Field: "name", Reason: fmt.Sprintf("duplicate label %q", l.Name)}
		}
		seen[l.Name] = true
	}
	return nil
}

// Find returns the label with the given name.
func Find(labels []Label, name string) (Label, bool) {
	for _, l := range labels {
		if l.Name == name {
			return l, true
		}
	}
	return Label{}, false
}

// Assign sets name to target, updating an existing label in place or
// appending a new one. The input slice is not modified.
func Assign(labels []Label, name string, target Tuple) []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	for i := range out {
		if out[i].Name == name {
			out[i].Target = target
			out[i].UpdatedAt = time.Now().UTC()
			return out
		}
	}
	return append(out, New(name, target))
}

// Remove drops the named label. It reports whether anything was removed.
func Remove(labels []Label, name string) ([]Label, bool) {
	out := make([]Label, 0, len(labels))
	removed := false
	for _, l := range labels {
		if l.Name == name {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out, removed
}

// ForTarget returns the names of labels whose target matches the instance
// and model.
func ForTarget(labels []Label, instanceID, modelID string) []string {
	var names []string
	for _, l := range labels {
		if l.Target.Matches(instanceID, modelID) {
			names = append(names, l.Name)
		}
	}
	return names
}
