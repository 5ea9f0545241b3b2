// Package label binds symbolic names to provider:model targets and decides
// which provider instances and models a target matches.
package label

import (
	"fmt"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Tuple is a parsed "provider:model" pair. It encodes as its string form.
type Tuple struct {
	Provider string
	Model    string
}

// ParseTuple parses "provider:model". Surrounding whitespace is trimmed and
// the input is split at the first colon; both parts must be non-empty and
// the model may not contain another colon.
func ParseTuple(s string) (Tuple, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tuple{}, &provider.ValidationError{Field: "target", Reason: "empty provider:model"}
	}
	prov, model, ok := strings.Cut(s, ":")
	if !ok {
		return Tuple{}, &provider.ValidationError{Field: "target", Reason: fmt.Sprintf("%q is missing ':' separator", s)}
	}
	prov = strings.TrimSpace(prov)
	model = strings.TrimSpace(model)
	if prov == "" {
		return Tuple{}, &provider.ValidationError{Field: "target", Reason: fmt.Sprintf("%q has an empty provider", s)}
	}
	if model == "" {
		return Tuple{}, &provider.ValidationError{Field: "target", Reason: fmt.Sprintf("%q has an empty model", s)}
	}
	if strings.Contains(model, ":") {
		return Tuple{}, &provider.ValidationError{Field: "target", Reason: fmt.Sprintf("%q has more than one ':'", s)}
	}
	return Tuple{Provider: prov, Model: model}, nil
}

// MustParseTuple is ParseTuple for literals known to be valid.
func MustParseTuple(s string) Tuple {
	t, err := ParseTuple(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Tuple) String() string {
	return t.Provider + ":" + t.Model
}

func (t Tuple) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tuple) UnmarshalText(b []byte) error {
	parsed, err := ParseTuple(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// IsZero reports whether no provider is set.
func (t Tuple) IsZero() bool {
	return t.Provider == ""
}

// Matches reports whether the instance id and optional model id satisfy t.
// The provider must equal instanceID exactly. A missing model matches on
// the provider alone. A model id of the form "prefix/basename" matches only
// when prefix equals the provider and basename equals the model; any other
// model id must equal the model exactly.
func (t Tuple) Matches(instanceID string, modelID string) bool {
	if t.Provider != instanceID {
		return false
	}
	if modelID == "" {
		return true
	}
	if prefix, base, ok := strings.Cut(modelID, "/"); ok {
		return prefix == t.Provider && base == t.Model
	}
	return modelID == t.Model
}
