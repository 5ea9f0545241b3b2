package scanner

import (
	"strings"
	"unicode"

	"github.com/robottwo/aicred-sub000/internal/credential"
)

// MinKeyLength is the shortest value accepted as an API key.
const MinKeyLength = 15

// ValidKey reports whether v is long enough, contains an alphanumeric
// character and is not a template placeholder.
func ValidKey(v string) bool {
	if len(v) < MinKeyLength || credential.IsPlaceholder(v) {
		return false
	}
	return strings.IndexFunc(v, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// Key builds an API key credential when v passes ValidKey.
func Key(provider, source, v string) (credential.Credential, bool) {
	v = strings.TrimSpace(v)
	if provider == "" || !ValidKey(v) {
		return credential.Credential{}, false
	}
	return credential.New(provider, source, credential.APIKey, v, credential.ConfidenceFor(v)), true
}

// Setting builds a non-secret credential when v is non-empty.
func Setting(provider, source string, vt credential.ValueType, v string) (credential.Credential, bool) {
	v = strings.TrimSpace(v)
	if provider == "" || v == "" {
		return credential.Credential{}, false
	}
	return credential.New(provider, source, vt, v, credential.Medium), true
}

// Collector gathers credentials for one source in extraction order.
type Collector struct {
	Source string
	creds  []credential.Credential
}

// Key adds an API key if valid.
func (c *Collector) Key(provider, v string) {
	if cr, ok := Key(provider, c.Source, v); ok {
		c.creds = append(c.creds, cr)
	}
}

// Setting adds a setting if non-empty.
func (c *Collector) Setting(provider string, vt credential.ValueType, v string) {
	if cr, ok := Setting(provider, c.Source, vt, v); ok {
		c.creds = append(c.creds, cr)
	}
}

// Add appends already built credentials.
func (c *Collector) Add(creds ...credential.Credential) {
	c.creds = append(c.creds, creds...)
}

// Credentials returns everything collected so far.
func (c *Collector) Credentials() []credential.Credential {
	return c.creds
}

var providerHints = []struct {
	hint     string
	provider string
}{
	{"openrouter", "openrouter"},
	{"anthropic", "anthropic"},
	{"claude", "anthropic"},
	{"openai", "openai"},
	{"azure", "azure"},
	{"gemini", "google"},
	{"google", "google"},
	{"groq", "groq"},
	{"mistral", "mistral"},
	{"cohere", "cohere"},
	{"deepseek", "deepseek"},
	{"huggingface", "huggingface"},
	{"hugging_face", "huggingface"},
	{"hf_", "huggingface"},
	{"together", "together"},
	{"ollama", "ollama"},
}

// InferProvider guesses a provider id from a key or variable name such as
// "OPENAI_API_KEY" or "anthropicApiKey". It returns "" when nothing fits.
func InferProvider(name string) string {
	lower := strings.ToLower(name)
	for _, h := range providerHints {
		if strings.Contains(lower, h.hint) {
			return h.provider
		}
	}
	return ""
}

// NormalizeProvider lower-cases a provider id and maps common aliases.
func NormalizeProvider(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "claude":
		return "anthropic"
	case "gemini":
		return "google"
	case "hf", "hugging_face", "hugging-face":
		return "huggingface"
	}
	return n
}
