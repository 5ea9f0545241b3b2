package goose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

func providers(res scanner.Result) map[string]*provider.Instance {
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
	assert.True(t, s.CanHandleFile("/home/u/.config/goose/config.yaml"))
	assert.True(t, s.CanHandleFile("/home/u/Library/Application Support/Goose/config.yaml"))
	assert.True(t, s.CanHandleFile("/home/u/.goosebench.env"))
	assert.False(t, s.CanHandleFile("/home/u/.config/goose/sessions.jsonl"))
}

func TestParseConfig(t *testing.T) {
	res := New().ParseConfig("/home/u/.config/goose/config.yaml", []byte(`
GOOSE_PROVIDER: anthropic
GOOSE_MODEL: claude-3-5-sonnet
GOOSE_MODE: smart_approve
ANTHROPIC_HOST: https://api.anthropic.com
OPENAI_API_KEY: sk-proj-abcdefghijklmnopqrst
extensions:
  developer:
    enabled: true
  search:
    envs:
      GROQ_API_KEY: gsk_abcdefghijklmnopqrstuv
`))
	require.Len(t, res.Instances, 1)
	assert.Equal(t, "anthropic", res.Instances[0].Metadata["provider"])

	got := providers(res)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"claude-3-5-sonnet"}, got["anthropic"].ModelIDs())
	assert.Equal(t, "https://api.anthropic.com", got["anthropic"].BaseURL)
	assert.False(t, got["anthropic"].HasAPIKey())
	assert.Equal(t, "sk-proj-abcdefghijklmnopqrst", got["openai"].Key())
	assert.Equal(t, "gsk_abcdefghijklmnopqrstuv", got["groq"].Key())
}

func TestParseBenchEnv(t *testing.T) {
	got := providers(New().ParseConfig("/home/u/.goosebench.env", []byte("export OPENROUTER_API_KEY=sk-or-v1-abcdefghijklmnopqrstu\n# GROQ_API_KEY=gsk_commentedoutvalue123\n")))
	require.Len(t, got, 1)
	assert.Equal(t, "sk-or-v1-abcdefghijklmnopqrstu", got["openrouter"].Key())
}

func TestParseMalformed(t *testing.T) {
	res := New().ParseConfig("/home/u/.config/goose/config.yaml", []byte("GOOSE_PROVIDER: [\n"))
	assert.True(t, res.Empty())
}
