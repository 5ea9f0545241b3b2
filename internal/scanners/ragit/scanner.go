// Package ragit scans Ragit's JSON configuration.
package ragit

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const providerID = "ragit"

// Scanner implements scanner.Scanner and scanner.SchemaProvider.
type Scanner struct {
	table *scanner.EnvTable
}

// New returns a Ragit scanner.
func New() *Scanner {
	return &Scanner{table: scanner.DefaultEnvTable()}
}

func (s *Scanner) Name() string    { return "ragit" }
func (s *Scanner) AppName() string { return "Ragit" }

func (s *Scanner) ScanPaths(home string) []string {
	return []string{
		filepath.Join(home, ".ragit", "config.json"),
		filepath.Join(home, ".config", "ragit", "config.json"),
	}
}

func (s *Scanner) CanHandleFile(path string) bool {
	if !strings.HasSuffix(path, ".json") {
		return false
	}
	dir := filepath.Base(filepath.Dir(path))
	return dir == ".ragit" || dir == "ragit"
}

// ParseConfig reads the top-level api_key, per-provider blocks and the env
// map. default_model is attached to the provider named by default_provider,
// falling back to ragit itself.
func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	doc, err := scanner.ParseJSON(path, content)
	if err != nil {
		log.Debug("skipping unparsable ragit config", "path", path, "error", err)
		return scanner.Failed(err)
	}

	c := &scanner.Collector{Source: path}
	if v, ok := doc.String("api_key"); ok {
		c.Key(providerID, v)
	}
	if v, ok := doc.String("base_url"); ok {
		c.Setting(providerID, credential.BaseURL, v)
	}

	providers := doc.Map("providers")
	for _, name := range providers.Keys() {
		p := providers.Map(name)
		prov := scanner.NormalizeProvider(name)
		if v, ok := p.String("api_key"); ok {
			c.Key(prov, v)
		}
		if v, ok := p.String("base_url"); ok {
			c.Setting(prov, credential.BaseURL, v)
		}
	}

	if model, ok := doc.String("default_model"); ok {
		prov := providerID
		if v, ok := doc.String("default_provider"); ok {
			prov = scanner.NormalizeProvider(v)
		}
		c.Setting(prov, credential.ModelID, model)
	}

	env := doc.Map("env")
	assigns := make([]scanner.Assignment, 0, len(env))
	for _, k := range env.Keys() {
		if v, ok := env.String(k); ok {
			assigns = append(assigns, scanner.Assignment{Name: k, Value: v})
		}
	}
	c.Add(s.table.FromAssignments(path, assigns)...)

	return scanner.NewResult(s, path, c.Credentials(), nil)
}

func (s *Scanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{
		envvar.Required("RAGIT_API_KEY", "API key for Ragit", credential.APIKey),
		envvar.Optional("RAGIT_BASE_URL", "API base URL for Ragit", credential.BaseURL, ""),
		envvar.Optional("RAGIT_MODEL_ID", "Model used by Ragit", credential.ModelID, ""),
	}
}

func (s *Scanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{
		{Label: "smart", Group: "RAGIT", Description: "Ragit default model"},
	}
}
