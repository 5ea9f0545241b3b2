package credential

import "strings"

var highConfidencePrefixes = []string{"sk-ant-", "sk-", "hf_", "gsk_"}

// ConfidenceFor estimates confidence from the shape of an API key.
func ConfidenceFor(value string) Confidence {
	for _, p := range highConfidencePrefixes {
		if strings.HasPrefix(value, p) {
			return High
		}
	}
	if len(value) >= 30 {
		return Medium
	}
	return Low
}

var placeholders = []string{
	"your-api-key",
	"your_api_key",
	"your-key-here",
	"api-key-here",
	"changeme",
	"placeholder",
	"example",
	"dummy",
	"redacted",
}

// IsPlaceholder reports whether v looks like a template value rather than a
// real secret.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	lower := strings.ToLower(v)
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return true
	}
	if strings.HasPrefix(v, "${") || strings.HasPrefix(v, "$(") {
		return true
	}
	if strings.Trim(lower, "x*.-_") == "" {
		return true
	}
	return false
}
