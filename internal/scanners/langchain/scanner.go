// Package langchain scans LangChain YAML/JSON configuration and .env files.
package langchain

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const providerID = "langchain"

// Scanner implements scanner.Scanner and scanner.SchemaProvider.
type Scanner struct {
	table *scanner.EnvTable
}

// New returns a LangChain scanner.
func New() *Scanner {
	return &Scanner{table: scanner.DefaultEnvTable()}
}

func (s *Scanner) Name() string    { return "langchain" }
func (s *Scanner) AppName() string { return "LangChain" }

func (s *Scanner) ScanPaths(home string) []string {
	dir := filepath.Join(home, ".langchain")
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "settings.json"),
		filepath.Join(dir, ".env"),
		filepath.Join(home, ".langchain.yaml"),
		filepath.Join(home, ".langchain.json"),
		filepath.Join(home, "langchain_config.yaml"),
		filepath.Join(home, "langchain_config.json"),
		filepath.Join(home, "langchain.env"),
	}
}

func (s *Scanner) CanHandleFile(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, "langchain") {
		return true
	}
	return filepath.Base(filepath.Dir(path)) == ".langchain"
}

func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	c := &scanner.Collector{Source: path}
	base := filepath.Base(path)

	var (
		doc scanner.Doc
		err error
	)
	switch {
	case strings.HasSuffix(base, ".env") || strings.HasPrefix(base, ".env"):
		c.Add(s.table.FromAssignments(path, scanner.EnvAssignments(content))...)
		c.Add(s.table.Extract(path, content)...)
		return scanner.NewResult(s, path, c.Credentials(), nil)
	case strings.HasSuffix(base, ".json"):
		doc, err = scanner.ParseJSON(path, content)
	default:
		doc, err = scanner.ParseYAML(path, content)
	}
	if err != nil {
		log.Debug("skipping unparsable langchain config", "path", path, "error", err)
		return scanner.Failed(err)
	}

	if v, ok := doc.String("api_key"); ok {
		c.Key(providerID, v)
	}
	if v, ok := doc.String("endpoint"); ok {
		c.Setting(providerID, credential.BaseURL, v)
	}

	providers := doc.Map("providers")
	for _, name := range providers.Keys() {
		block(c, scanner.NormalizeProvider(name), providers.Map(name))
	}

	if llm := doc.Map("llm"); llm != nil {
		prov, _ := llm.String("provider")
		prov = scanner.NormalizeProvider(prov)
		if prov == "" {
			prov = providerID
		}
		block(c, prov, llm)
	}

	env := doc.Map("env")
	var assigns []scanner.Assignment
	for _, k := range env.Keys() {
		if v, ok := env.String(k); ok {
			assigns = append(assigns, scanner.Assignment{Name: k, Value: v})
		}
	}
	c.Add(s.table.FromAssignments(path, assigns)...)

	return scanner.NewResult(s, path, c.Credentials(), nil)
}

func block(c *scanner.Collector, prov string, d scanner.Doc) {
	if d == nil {
		return
	}
	if v, ok := d.String("api_key"); ok {
		c.Key(prov, v)
	}
	for _, k := range []string{"base_url", "api_base"} {
		if v, ok := d.String(k); ok {
			c.Setting(prov, credential.BaseURL, v)
		}
	}
	for _, k := range []string{"model", "model_name"} {
		if v, ok := d.String(k); ok {
			c.Setting(prov, credential.ModelID, v)
		}
	}
	if v, ok := d.String("temperature"); ok {
		c.Setting(prov, credential.Temperature, v)
	}
	if v, ok := d.String("max_tokens"); ok {
		c.Setting(prov, credential.MaxTokens, v)
	}
}

func (s *Scanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{
		envvar.Required("LANGCHAIN_API_KEY", "API key for LangChain", credential.APIKey),
		envvar.Optional("LANGCHAIN_BASE_URL", "API base URL for LangChain", credential.BaseURL, ""),
		envvar.Optional("LANGCHAIN_MODEL_ID", "Model used by LangChain", credential.ModelID, ""),
	}
}

func (s *Scanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{
		{Label: "smart", Group: "LANGCHAIN", Description: "LangChain default model"},
	}
}
