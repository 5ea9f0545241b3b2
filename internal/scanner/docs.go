package scanner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Doc is a generic decoded document tree with string keys.
type Doc map[string]any

// ParseJSON decodes a JSON object.
func ParseJSON(path string, content []byte) (Doc, error) {
	var d Doc
	if err := json.Unmarshal(content, &d); err != nil {
		return nil, &provider.ParseError{Path: path, Cause: err}
	}
	return d, nil
}

// ParseTOML decodes a TOML document.
func ParseTOML(path string, content []byte) (Doc, error) {
	var d Doc
	if _, err := toml.Decode(string(content), &d); err != nil {
		return nil, &provider.ParseError{Path: path, Cause: err}
	}
	return d, nil
}

// ParseYAML decodes a YAML mapping and converts it into the JSON-shaped
// tree the other parsers return. A malformed document is a ParseError; a
// document that cannot be represented as JSON is a ConfigError.
func ParseYAML(path string, content []byte) (Doc, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &provider.ParseError{Path: path, Cause: err}
	}
	if raw == nil {
		return Doc{}, nil
	}
	conv, err := YAMLToJSON(raw)
	if err != nil {
		return nil, &provider.ConfigError{Path: path, Cause: err}
	}
	m, ok := conv.(map[string]any)
	if !ok {
		return nil, &provider.ParseError{Path: path, Cause: fmt.Errorf("top level is %T, not a mapping", conv)}
	}
	return Doc(m), nil
}

// YAMLToJSON converts a decoded YAML value so that every mapping has string
// keys. Scalar keys are stringified; composite keys are an error.
func YAMLToJSON(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			c, err := YAMLToJSON(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = c
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			key, err := scalarKey(k)
			if err != nil {
				return nil, err
			}
			c, err := YAMLToJSON(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = c
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			c, err := YAMLToJSON(val)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	default:
		return v, nil
	}
}

func scalarKey(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case nil:
		return "null", nil
	default:
		return "", fmt.Errorf("unsupported mapping key of type %T", k)
	}
}

// Map returns the child mapping at key, or nil.
func (d Doc) Map(key string) Doc {
	if d == nil {
		return nil
	}
	m, ok := d[key].(map[string]any)
	if !ok {
		return nil
	}
	return Doc(m)
}

// Path walks nested mappings.
func (d Doc) Path(keys ...string) Doc {
	cur := d
	for _, k := range keys {
		cur = cur.Map(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// String returns the scalar at key formatted as a string. Numbers and
// booleans are converted; mappings and lists are not.
func (d Doc) String(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	switch v := d[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

// Keys returns the mapping's keys sorted, for deterministic iteration.
func (d Doc) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
