package ragit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

func parse(t *testing.T, content string) map[string]*provider.Instance {
	t.Helper()
	res := New().ParseConfig("/home/u/.ragit/config.json", []byte(content))
	out := make(map[string]*provider.Instance)
	for _, ci := range res.Instances {
		for _, p := range ci.Providers {
			out[p.ID] = p
		}
	}
	return out
}

func TestCanHandleFile(t *testing.T) {
	s := New()
	assert.True(t, s.CanHandleFile("/home/u/.ragit/config.json"))
	assert.True(t, s.CanHandleFile("/home/u/.config/ragit/config.json"))
	assert.False(t, s.CanHandleFile("/home/u/.ragit/notes.txt"))
	assert.False(t, s.CanHandleFile("/home/u/.config/other/config.json"))
}

func TestParseConfig(t *testing.T) {
	got := parse(t, `{
  "api_key": "rg_abcdefghijklmnopqrstuv",
  "default_model": "gpt-4o-mini",
  "default_provider": "openai",
  "providers": {
    "openai": {"api_key": "sk-proj-abcdefghijklmnopqrst"},
    "Claude": {"api_key": "sk-ant-REDACTED", "base_url": "https://api.anthropic.com"}
  },
  "env": {
    "GROQ_API_KEY": "gsk_abcdefghijklmnopqrstuv",
    "PATH": "/usr/bin"
  }
}`)
	require.Len(t, got, 4)
	assert.Equal(t, "rg_abcdefghijklmnopqrstuv", got["ragit"].Key())
	assert.Equal(t, []string{"gpt-4o-mini"}, got["openai"].ModelIDs())
	assert.Equal(t, "https://api.anthropic.com", got["anthropic"].BaseURL)
	assert.Equal(t, "gsk_abcdefghijklmnopqrstuv", got["groq"].Key())
}

func TestParseDefaultModelWithoutProvider(t *testing.T) {
	got := parse(t, `{"api_key": "rg_abcdefghijklmnopqrstuv", "default_model": "llama3-70b-8192"}`)
	assert.Equal(t, []string{"llama3-70b-8192"}, got["ragit"].ModelIDs())
}

func TestParseKeysAreHighConfidence(t *testing.T) {
	res := New().ParseConfig("/home/u/.ragit/config.json", []byte(`{"providers": {"openai": {"api_key": "sk-proj-abcdefghijklmnopqrst"}}}`))
	require.Len(t, res.Keys, 1)
	assert.Equal(t, credential.High, res.Keys[0].Confidence)
}

func TestParsePlaceholderAndGarbage(t *testing.T) {
	assert.Empty(t, parse(t, `{"api_key": "your-api-key-goes-here"}`))
	assert.Empty(t, parse(t, `{{`))
}
