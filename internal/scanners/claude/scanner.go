// Package claude scans Claude Desktop's JSON configuration.
package claude

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const providerID = "anthropic"

// Scanner implements scanner.Scanner and scanner.SchemaProvider.
type Scanner struct{}

// New returns a Claude Desktop scanner.
func New() *Scanner { return &Scanner{} }

func (s *Scanner) Name() string    { return "claude-desktop" }
func (s *Scanner) AppName() string { return "Claude Desktop" }

func (s *Scanner) ScanPaths(home string) []string {
	return []string{
		filepath.Join(home, ".claude.json"),
		filepath.Join(home, "Library", "Application Support", "Claude", "config.json"),
		filepath.Join(home, ".config", "Claude", "config.json"),
		filepath.Join(home, ".claude", "profiles", "default.json"),
	}
}

func (s *Scanner) CanHandleFile(path string) bool {
	if !strings.HasSuffix(filepath.Base(path), ".json") {
		return false
	}
	return strings.Contains(strings.ToLower(path), "claude")
}

// ParseConfig reads the API key stored under userID plus the model
// settings next to it. Documents without userID are not Claude Desktop
// configuration and yield nothing.
func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	doc, err := scanner.ParseJSON(path, content)
	if err != nil {
		log.Debug("skipping unparsable claude config", "path", path, "error", err)
		return scanner.Failed(err)
	}
	if _, ok := doc["userID"]; !ok {
		return scanner.Result{}
	}

	c := &scanner.Collector{Source: path}
	if v, ok := doc.String("userID"); ok {
		c.Key(providerID, v)
	}
	if v, ok := doc.String("model"); ok {
		c.Setting(providerID, credential.ModelID, v)
	}
	if v, ok := doc.String("temperature"); ok {
		c.Setting(providerID, credential.Temperature, v)
	}
	if v, ok := doc.String("max_tokens"); ok {
		c.Setting(providerID, credential.MaxTokens, v)
	}
	if v, ok := doc.String("base_url"); ok {
		c.Setting(providerID, credential.BaseURL, v)
	}

	meta := map[string]string{}
	if v, ok := doc.String("claude_version"); ok {
		meta["version"] = v
	}
	return scanner.NewResult(s, path, c.Credentials(), meta)
}

func (s *Scanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{
		envvar.Required("CLAUDE_DESKTOP_API_KEY", "Anthropic API key used by Claude Desktop", credential.APIKey),
		envvar.Optional("CLAUDE_DESKTOP_BASE_URL", "Anthropic API base URL", credential.BaseURL, "https://api.anthropic.com"),
		envvar.Optional("CLAUDE_DESKTOP_MODEL_ID", "Model used by Claude Desktop", credential.ModelID, ""),
	}
}

func (s *Scanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{
		{Label: "smart", Group: "CLAUDE_DESKTOP", Description: "Claude Desktop default model"},
	}
}
