// Package gsh scans the GSH shell's rc file.
//
// GSH configures two model slots through exported variables:
// GSH_FAST_MODEL_* (served by Groq) and GSH_SLOW_MODEL_* (served by
// OpenRouter). The rc file is also an ordinary shell rc, so well-known
// provider variables such as OPENAI_API_KEY are picked up too.
package gsh

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const (
	fastPrefix = "GSH_FAST_MODEL_"
	slowPrefix = "GSH_SLOW_MODEL_"

	fastProvider = "groq"
	slowProvider = "openrouter"
)

var suffixTypes = map[string]credential.ValueType{
	"API_KEY":             credential.APIKey,
	"BASE_URL":            credential.BaseURL,
	"ID":                  credential.ModelID,
	"TEMPERATURE":         credential.Temperature,
	"PARALLEL_TOOL_CALLS": credential.ParallelToolCalls,
	"HEADERS":             credential.Headers,
	"MAX_TOKENS":          credential.MaxTokens,
}

// Scanner implements scanner.Scanner and scanner.SchemaProvider.
type Scanner struct {
	table *scanner.EnvTable
}

// New returns a GSH scanner using the default env table.
func New() *Scanner {
	return &Scanner{table: scanner.DefaultEnvTable()}
}

func (s *Scanner) Name() string    { return "gsh" }
func (s *Scanner) AppName() string { return "GSH" }

func (s *Scanner) ScanPaths(home string) []string {
	return []string{filepath.Join(home, ".gshrc")}
}

func (s *Scanner) CanHandleFile(path string) bool {
	base := filepath.Base(path)
	return base == ".gshrc" || strings.HasSuffix(base, "gshrc")
}

// ParseConfig runs a structured pass over shell assignments, then a regex
// pass over the raw text. The regex pass only contributes values the
// structured pass did not already produce.
func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	c := &scanner.Collector{Source: path}

	assigns := scanner.ShellAssignments(content)
	for _, a := range assigns {
		s.slot(c, a)
	}
	c.Add(s.table.FromAssignments(path, assigns)...)
	c.Add(s.table.Extract(path, content)...)

	return scanner.NewResult(s, path, c.Credentials(), nil)
}

func (s *Scanner) slot(c *scanner.Collector, a scanner.Assignment) {
	var prov, suffix string
	switch {
	case strings.HasPrefix(a.Name, fastPrefix):
		prov, suffix = fastProvider, strings.TrimPrefix(a.Name, fastPrefix)
	case strings.HasPrefix(a.Name, slowPrefix):
		prov, suffix = slowProvider, strings.TrimPrefix(a.Name, slowPrefix)
	default:
		return
	}
	vt, ok := suffixTypes[suffix]
	if !ok {
		return
	}
	if vt.Kind == credential.KindAPIKey {
		c.Key(prov, a.Value)
		return
	}
	c.Setting(prov, vt, a.Value)
}

func (s *Scanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{
		envvar.Required("GSH_FAST_MODEL_API_KEY", "API key for the fast model", credential.APIKey),
		envvar.Optional("GSH_FAST_MODEL_BASE_URL", "Base URL for the fast model", credential.BaseURL, "https://api.groq.com/openai/v1"),
		envvar.Optional("GSH_FAST_MODEL_ID", "Model id for the fast model", credential.ModelID, "llama3-70b-8192"),
		envvar.Optional("GSH_FAST_MODEL_TEMPERATURE", "Sampling temperature for the fast model", credential.Temperature, ""),
		envvar.Optional("GSH_FAST_MODEL_PARALLEL_TOOL_CALLS", "Whether the fast model may call tools in parallel", credential.ParallelToolCalls, ""),
		envvar.Optional("GSH_FAST_MODEL_HEADERS", "Extra request headers for the fast model", credential.Headers, ""),
		envvar.Required("GSH_SLOW_MODEL_API_KEY", "API key for the slow model", credential.APIKey),
		envvar.Optional("GSH_SLOW_MODEL_BASE_URL", "Base URL for the slow model", credential.BaseURL, "https://openrouter.ai/api/v1"),
		envvar.Optional("GSH_SLOW_MODEL_ID", "Model id for the slow model", credential.ModelID, "anthropic/claude-3-opus"),
	}
}

func (s *Scanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{
		{Label: "fast", Group: "GSH_FAST_MODEL", Description: "GSH fast model slot"},
		{Label: "smart", Group: "GSH_SLOW_MODEL", Description: "GSH slow model slot"},
	}
}
