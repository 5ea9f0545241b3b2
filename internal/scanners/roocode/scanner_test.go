package roocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/aicred-sub000/internal/provider"
)

func instances(t *testing.T, path, content string) map[string]*provider.Instance {
	t.Helper()
	res := New().ParseConfig(path, []byte(content))
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
	tests := []struct {
		path string
		want bool
	}{
		{"/home/u/.config/Code/User/globalStorage/rooveterinaryinc.roo-cline/settings/cline_mcp_settings.json", true},
		{"/home/u/.vscode/extensions/rooveterinaryinc.roo-cline-3.1.0/package.json", true},
		{"/home/u/.roo-code/config.json", true},
		{"/home/u/.roo_code/.env", true},
		{"/home/u/roo_code.json", true},
		{"/home/u/.vscode/settings.json", false},
		{"/home/u/config.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, s.CanHandleFile(tt.path))
		})
	}
}

func TestScanPathsAreGlobs(t *testing.T) {
	paths := New().ScanPaths("/home/u")
	assert.Contains(t, paths, "/home/u/.vscode/extensions/rooveterinaryinc.roo-cline-*/package.json")
	assert.Contains(t, paths, "/home/u/.config/{Code,Code - Insiders,VSCodium}/User/globalStorage/rooveterinaryinc.roo-cline/settings/*.json")
	assert.Contains(t, paths, "/home/u/.roo-code/config.json")
}

func TestParseExtensionBlock(t *testing.T) {
	got := instances(t, "/home/u/.roo-code/config.json", `{
  "roo-cline": {
    "keys": {
      "openai": "sk-proj-abcdefghijklmnopqrst",
      "claude": "sk-ant-REDACTED",
      "groq": "short"
    },
    "settings": {
      "apiProvider": "openai",
      "apiModelId": "gpt-4o",
      "temperature": 0.3
    }
  }
}`)
	require.Contains(t, got, "openai")
	assert.Equal(t, "sk-proj-abcdefghijklmnopqrst", got["openai"].Key())
	assert.Equal(t, []string{"gpt-4o"}, got["openai"].ModelIDs())
	assert.Equal(t, "0.3", got["openai"].Metadata["temperature"])
	require.Contains(t, got, "anthropic")
	assert.NotContains(t, got, "groq")
}

func TestParseExportedProfile(t *testing.T) {
	got := instances(t, "/home/u/roo-code.json", `{
  "apiProvider": "openrouter",
  "apiModelId": "deepseek/deepseek-v3.2-exp",
  "apiKey": "sk-or-v1-abcdefghijklmnopqrstuvwx",
  "anthropicApiKey": "sk-ant-REDACTED",
  "rooApiKey": "roo_abcdefghijklmnopqrs"
}`)
	require.Contains(t, got, "openrouter")
	assert.Equal(t, "sk-or-v1-abcdefghijklmnopqrstuvwx", got["openrouter"].Key())
	assert.Equal(t, []string{"deepseek/deepseek-v3.2-exp"}, got["openrouter"].ModelIDs())
	assert.Equal(t, "sk-ant-REDACTED", got["anthropic"].Key())
	assert.Equal(t, "roo_abcdefghijklmnopqrs", got["roo-code"].Key())
}

func TestParseManifest(t *testing.T) {
	got := instances(t, "/home/u/.vscode/extensions/rooveterinaryinc.roo-cline-3.1.0/package.json", `{
  "name": "roo-cline",
  "version": "3.1.0",
  "contributes": {
    "configuration": {
      "properties": {
        "roo-cline.openAiApiKey": {"type": "string", "default": "sk-proj-manifestdefault12345"},
        "roo-cline.apiKey": {"type": "string", "default": ""},
        "roo-cline.allowedCommands": {"type": "array"}
      }
    }
  }
}`)
	require.Len(t, got, 1)
	assert.Equal(t, "sk-proj-manifestdefault12345", got["openai"].Key())
}

func TestParseEnvFallback(t *testing.T) {
	got := instances(t, "/home/u/.roo-code/.env", "ROO_CODE_API_KEY=roo_abcdefghijklmnopqrs\nOPENAI_API_KEY=sk-proj-abcdefghijklmnopqrst\n")
	assert.Equal(t, "roo_abcdefghijklmnopqrs", got["roo-code"].Key())
	assert.Equal(t, "sk-proj-abcdefghijklmnopqrst", got["openai"].Key())
}

func TestParseGarbage(t *testing.T) {
	assert.True(t, New().ParseConfig("/home/u/.roo-code/config.json", []byte("not json")).Empty())
}
