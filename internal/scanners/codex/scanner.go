// Package codex scans the Codex CLI's config.toml and auth.json.
package codex

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const defaultProvider = "openai"

// EnvKey is the metadata key recording which environment variable a
// provider block reads its API key from.
var EnvKey = credential.Custom("env_key")

// Scanner implements scanner.Scanner. Codex reads keys from variables
// named in its own config, so it has no fixed schema.
type Scanner struct{}

// New returns a Codex CLI scanner.
func New() *Scanner { return &Scanner{} }

func (s *Scanner) Name() string    { return "codex" }
func (s *Scanner) AppName() string { return "Codex CLI" }

func (s *Scanner) ScanPaths(home string) []string {
	dir := filepath.Join(home, ".codex")
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "auth.json"),
	}
}

func (s *Scanner) CanHandleFile(path string) bool {
	if filepath.Base(filepath.Dir(path)) != ".codex" {
		return false
	}
	base := filepath.Base(path)
	return base == "config.toml" || base == "auth.json"
}

func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	c := &scanner.Collector{Source: path}
	if strings.HasSuffix(path, ".json") {
		doc, err := scanner.ParseJSON(path, content)
		if err != nil {
			log.Debug("skipping unparsable codex auth", "path", path, "error", err)
			return scanner.Failed(err)
		}
		if v, ok := doc.String("OPENAI_API_KEY"); ok {
			c.Key(defaultProvider, v)
		}
		return scanner.NewResult(s, path, c.Credentials(), nil)
	}

	doc, err := scanner.ParseTOML(path, content)
	if err != nil {
		log.Debug("skipping unparsable codex config", "path", path, "error", err)
		return scanner.Failed(err)
	}
	active := defaultProvider
	if v, ok := doc.String("model_provider"); ok {
		active = scanner.NormalizeProvider(v)
	}
	if v, ok := doc.String("model"); ok {
		c.Setting(active, credential.ModelID, v)
	}

	profiles := doc.Map("profiles")
	for _, name := range profiles.Keys() {
		p := profiles.Map(name)
		prov := active
		if v, ok := p.String("model_provider"); ok {
			prov = scanner.NormalizeProvider(v)
		}
		if v, ok := p.String("model"); ok {
			c.Setting(prov, credential.ModelID, v)
		}
	}

	blocks := doc.Map("model_providers")
	for _, name := range blocks.Keys() {
		b := blocks.Map(name)
		prov := scanner.NormalizeProvider(name)
		if v, ok := b.String("base_url"); ok {
			c.Setting(prov, credential.BaseURL, v)
		}
		if v, ok := b.String("env_key"); ok {
			c.Setting(prov, EnvKey, v)
		}
	}

	meta := map[string]string{}
	if v, ok := doc.String("approval_policy"); ok {
		meta["approval_policy"] = v
	}
	return scanner.NewResult(s, path, c.Credentials(), meta)
}
