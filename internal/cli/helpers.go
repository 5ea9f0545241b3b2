package cli

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// validEnvKey matches valid environment variable names.
// Must start with letter or underscore, followed by letters, digits, or underscores.
var validEnvKey = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidEnvKey reports whether name is a valid environment variable name.
func ValidEnvKey(name string) bool {
	return validEnvKey.MatchString(name)
}

// ParseEnvFlags validates and parses KEY=VALUE flags. Later flags override
// earlier ones.
func ParseEnvFlags(envFlags []string) (map[string]string, error) {
	if len(envFlags) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(envFlags))
	for _, e := range envFlags {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid environment variable %q: expected KEY=VALUE format", e)
		}
		if !ValidEnvKey(key) {
			return nil, fmt.Errorf("invalid environment variable name %q: must start with letter or underscore, contain only letters, digits, and underscores", key)
		}
		out[key] = value
	}
	return out, nil
}

// MergeEnviron overlays vars onto environ (KEY=value pairs). Entries in
// environ whose key is in vars are replaced; the rest keep their order.
func MergeEnviron(environ []string, vars map[string]string) []string {
	out := make([]string, 0, len(environ)+len(vars))
	for _, kv := range environ {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := vars[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for _, k := range sortedKeys(vars) {
		out = append(out, k+"="+vars[k])
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
