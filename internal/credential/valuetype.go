package credential

import (
	"fmt"
	"strings"
)

// Kind identifies what a discovered value represents.
type Kind int

const (
	KindAPIKey Kind = iota
	KindBaseURL
	KindModelID
	KindTemperature
	KindMaxTokens
	KindParallelToolCalls
	KindHeaders
	KindCustom
)

// ValueType is a closed set of value kinds plus an open Custom(name) case.
// The zero value is an API key.
type ValueType struct {
	Kind Kind
	// Name is only meaningful for KindCustom.
	Name string
}

// Convenience values for the fixed kinds.
var (
	APIKey            = ValueType{Kind: KindAPIKey}
	BaseURL           = ValueType{Kind: KindBaseURL}
	ModelID           = ValueType{Kind: KindModelID}
	Temperature       = ValueType{Kind: KindTemperature}
	MaxTokens         = ValueType{Kind: KindMaxTokens}
	ParallelToolCalls = ValueType{Kind: KindParallelToolCalls}
	Headers           = ValueType{Kind: KindHeaders}
)

// Custom returns a custom value type with the given name.
func Custom(name string) ValueType {
	return ValueType{Kind: KindCustom, Name: name}
}

// Key returns the metadata key used for this value type. Custom types use
// their own name.
func (v ValueType) Key() string {
	switch v.Kind {
	case KindAPIKey:
		return "api_key"
	case KindBaseURL:
		return "base_url"
	case KindModelID:
		return "model_id"
	case KindTemperature:
		return "temperature"
	case KindMaxTokens:
		return "max_tokens"
	case KindParallelToolCalls:
		return "parallel_tool_calls"
	case KindHeaders:
		return "headers"
	case KindCustom:
		return v.Name
	default:
		return fmt.Sprintf("kind_%d", int(v.Kind))
	}
}

// String returns a display form, e.g. "ApiKey" or "Custom(region)".
func (v ValueType) String() string {
	switch v.Kind {
	case KindAPIKey:
		return "ApiKey"
	case KindBaseURL:
		return "BaseUrl"
	case KindModelID:
		return "ModelId"
	case KindTemperature:
		return "Temperature"
	case KindMaxTokens:
		return "MaxTokens"
	case KindParallelToolCalls:
		return "ParallelToolCalls"
	case KindHeaders:
		return "Headers"
	case KindCustom:
		return "Custom(" + v.Name + ")"
	default:
		return "Unknown"
	}
}

// ParseValueType parses the forms produced by Key and String.
func ParseValueType(s string) (ValueType, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "api_key", "apikey":
		return APIKey, nil
	case "base_url", "baseurl":
		return BaseURL, nil
	case "model_id", "modelid", "model":
		return ModelID, nil
	case "temperature":
		return Temperature, nil
	case "max_tokens", "maxtokens":
		return MaxTokens, nil
	case "parallel_tool_calls", "paralleltoolcalls":
		return ParallelToolCalls, nil
	case "headers":
		return Headers, nil
	case "":
		return ValueType{}, fmt.Errorf("empty value type")
	}
	if strings.HasPrefix(s, "Custom(") && strings.HasSuffix(s, ")") {
		name := s[len("Custom(") : len(s)-1]
		if name == "" {
			return ValueType{}, fmt.Errorf("custom value type needs a name")
		}
		return Custom(name), nil
	}
	return Custom(s), nil
}

// MarshalText implements encoding.TextMarshaler using Key.
func (v ValueType) MarshalText() ([]byte, error) {
	return []byte(v.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ValueType) UnmarshalText(b []byte) error {
	parsed, err := ParseValueType(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
