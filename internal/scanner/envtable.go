package scanner

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

// EnvRule maps one environment variable to a provider and value type.
type EnvRule struct {
	Name      string               `yaml:"name"`
	Provider  string               `yaml:"provider"`
	ValueType credential.ValueType `yaml:"type"`
}

type compiledRule struct {
	EnvRule
	re *regexp.Regexp
}

// EnvTable is a compiled set of EnvRules.
type EnvTable struct {
	rules  []compiledRule
	byName map[string]EnvRule
}

type envTableFile struct {
	Variables []EnvRule `yaml:"variables"`
}

// NewEnvTable compiles rules. API key rows only match values of at least
// 15 characters drawn from [A-Za-z0-9_-]; other rows match any token. The
// value must run to the end of the line or a trailing comment, so a key
// with other characters in it is skipped rather than cut short.
func NewEnvTable(rules []EnvRule) (*EnvTable, error) {
	t := &EnvTable{byName: make(map[string]EnvRule, len(rules))}
	for i, r := range rules {
		if r.Name == "" || r.Provider == "" {
			return nil, &provider.ValidationError{Field: "variables", Reason: fmt.Sprintf("rule %d needs name and provider", i)}
		}
		value := `([^"'\s#]+)`
		if r.ValueType.Kind == credential.KindAPIKey {
			value = `([A-Za-z0-9_-]{15,})`
		}
		expr := `(?im)^[ \t]*(?:export[ \t]+)?` + regexp.QuoteMeta(r.Name) + `[ \t]*=[ \t]*["']?` + value + `["']?[ \t]*(?:#.*)?\r?$`
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", r.Name, err)
		}
		t.rules = append(t.rules, compiledRule{EnvRule: r, re: re})
		t.byName[strings.ToUpper(r.Name)] = r
	}
	return t, nil
}

// LoadEnvTable reads a YAML table of the form {variables: [...]}.
func LoadEnvTable(data []byte) (*EnvTable, error) {
	var f envTableFile
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, &provider.ConfigError{Cause: fmt.Errorf("decoding env table: %w", err)}
	}
	return NewEnvTable(f.Variables)
}

// Lookup returns the rule for an environment variable name, ignoring case.
func (t *EnvTable) Lookup(name string) (EnvRule, bool) {
	r, ok := t.byName[strings.ToUpper(name)]
	return r, ok
}

// Rules returns the rules in table order.
func (t *EnvTable) Rules() []EnvRule {
	out := make([]EnvRule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.EnvRule
	}
	return out
}

// Extract scans KEY=value text for every rule, in table order. Placeholder
// API keys are skipped.
func (t *EnvTable) Extract(source string, content []byte) []credential.Credential {
	var out []credential.Credential
	for _, r := range t.rules {
		for _, m := range r.re.FindAllSubmatch(content, -1) {
			v := string(m[1])
			if c, ok := t.credential(r.EnvRule, source, v); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// FromAssignments converts structured assignments using the table. Names
// not in the table are ignored.
func (t *EnvTable) FromAssignments(source string, assigns []Assignment) []credential.Credential {
	var out []credential.Credential
	for _, a := range assigns {
		r, ok := t.Lookup(a.Name)
		if !ok {
			continue
		}
		if c, ok := t.credential(r, source, a.Value); ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *EnvTable) credential(r EnvRule, source, v string) (credential.Credential, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return credential.Credential{}, false
	}
	conf := credential.Medium
	if r.ValueType.Kind == credential.KindAPIKey {
		if credential.IsPlaceholder(v) {
			return credential.Credential{}, false
		}
		conf = credential.ConfidenceFor(v)
	}
	return credential.New(r.Provider, source, r.ValueType, v, conf), true
}

//go:embed patterns/env.yaml
var defaultEnvTable []byte

var (
	envOnce  sync.Once
	envTable *EnvTable
)

// DefaultEnvTable returns the embedded table, compiled once.
func DefaultEnvTable() *EnvTable {
	envOnce.Do(func() {
		t, err := LoadEnvTable(defaultEnvTable)
		if err != nil {
			log.Warn("loading embedded env table", "error", err)
			t = &EnvTable{byName: map[string]EnvRule{}}
		}
		envTable = t
	})
	return envTable
}
