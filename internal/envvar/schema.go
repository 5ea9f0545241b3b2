// Package envvar resolves labels and provider instances into environment
// variables described by a declared schema.
package envvar

import (
	"fmt"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/label"
)

// Declaration describes one environment variable an application reads.
type Declaration struct {
	Name         string               `yaml:"name" json:"name"`
	Description  string               `yaml:"description,omitempty" json:"description,omitempty"`
	ValueType    credential.ValueType `yaml:"value_type" json:"value_type"`
	Required     bool                 `yaml:"required" json:"required"`
	DefaultValue *string              `yaml:"default,omitempty" json:"default,omitempty"`
}

// Required declares a variable that must resolve.
func Required(name, description string, vt credential.ValueType) Declaration {
	return Declaration{Name: name, Description: description, ValueType: vt, Required: true}
}

// Optional declares a variable with an optional default. An empty def means
// no default.
func Optional(name, description string, vt credential.ValueType, def string) Declaration {
	d := Declaration{Name: name, Description: description, ValueType: vt}
	if def != "" {
		d.DefaultValue = &def
	}
	return d
}

// Default returns the default value and whether one is declared.
func (d Declaration) Default() (string, bool) {
	if d.DefaultValue == nil {
		return "", false
	}
	return *d.DefaultValue, true
}

// Mapping ties a label to the variable group prefix an application uses.
type Mapping struct {
	Label       string `yaml:"label" json:"label"`
	Group       string `yaml:"group" json:"group"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// DefaultPrefixes are the application prefixes used when no schema is
// declared.
var DefaultPrefixes = []string{"GSH", "ROO_CODE", "CLAUDE_DESKTOP", "RAGIT", "LANGCHAIN"}

// NormalizeLabel converts a label name into an environment variable
// fragment: hyphens become underscores and letters are upper-cased.
func NormalizeLabel(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// GroupName returns "<PREFIX>_<LABEL>".
func GroupName(prefix, labelName string) string {
	return prefix + "_" + NormalizeLabel(labelName)
}

// DefaultSchema crosses every distinct label name, in first-seen order,
// with DefaultPrefixes.
func DefaultSchema(labels []label.Label) ([]Declaration, []Mapping) {
	var (
		schema   []Declaration
		mappings []Mapping
		seen     = make(map[string]bool)
	)
	for _, l := range labels {
		if seen[l.Name] {
			continue
		}
		seen[l.Name] = true
		for _, prefix := range DefaultPrefixes {
			group := GroupName(prefix, l.Name)
			mappings = append(mappings, Mapping{
				Label:       l.Name,
				Group:       group,
				Description: fmt.Sprintf("%s %s model configuration", prefix, l.Name),
			})
			who := prefix + " " + l.Name + " label"
			schema = append(schema,
				Required(group+"_MODEL", "Model for "+who, credential.ModelID),
				Required(group+"_API_KEY", "API key for "+who, credential.APIKey),
				Optional(group+"_BASE_URL", "Base URL for "+who, credential.BaseURL, ""),
				Optional(group+"_TEMPERATURE", "Temperature for "+who, credential.Temperature, ""),
				Optional(group+"_MAX_TOKENS", "Max tokens for "+who, credential.MaxTokens, ""),
			)
		}
	}
	return schema, mappings
}

// SchemaFromMappings declares _MODEL and _API_KEY (required) and _BASE_URL
// (optional) for every mapping.
func SchemaFromMappings(mappings []Mapping) []Declaration {
	var schema []Declaration
	for _, m := range mappings {
		schema = append(schema,
			Required(m.Group+"_MODEL", "Model for "+m.Label, credential.ModelID),
			Required(m.Group+"_API_KEY", "API key for "+m.Label, credential.APIKey),
			Optional(m.Group+"_BASE_URL", "Base URL for "+m.Label, credential.BaseURL, ""),
		)
	}
	return schema
}
