// Package roocode scans Roo Code (the rooveterinaryinc.roo-cline VS Code
// extension) settings, exported profiles and extension manifests.
package roocode

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

const (
	extensionID = "rooveterinaryinc.roo-cline"
	providerID  = "roo-code"
)

// Scanner implements scanner.Scanner and scanner.SchemaProvider.
type Scanner struct {
	table *scanner.EnvTable
}

// New returns a Roo Code scanner.
func New() *Scanner {
	return &Scanner{table: scanner.DefaultEnvTable()}
}

func (s *Scanner) Name() string    { return "roo-code" }
func (s *Scanner) AppName() string { return "Roo Code" }

// ScanPaths returns glob patterns; editors are matched with {a,b} groups.
func (s *Scanner) ScanPaths(home string) []string {
	editors := "{Code,Code - Insiders,VSCodium}"
	var paths []string
	for _, base := range []string{
		filepath.Join(home, ".config", editors, "User", "globalStorage", extensionID),
		filepath.Join(home, "Library", "Application Support", editors, "User", "globalStorage", extensionID),
		filepath.Join(home, ".vscode-server", "data", "User", "globalStorage", extensionID),
	} {
		paths = append(paths,
			filepath.Join(base, "*.json"),
			filepath.Join(base, "settings", "*.json"),
		)
	}
	for _, dir := range []string{".vscode", ".vscode-insiders", ".vscode-oss"} {
		paths = append(paths, filepath.Join(home, dir, "extensions", extensionID+"-*", "package.json"))
	}
	return append(paths,
		filepath.Join(home, ".roo-code", "config.json"),
		filepath.Join(home, ".roo_code", "config.json"),
		filepath.Join(home, ".roo-code", ".env"),
		filepath.Join(home, "roo-code.json"),
		filepath.Join(home, "roo_code.json"),
	)
}

func (s *Scanner) CanHandleFile(path string) bool {
	base := filepath.Base(path)
	lower := strings.ToLower(path)
	switch {
	case base == "roo-code.json" || base == "roo_code.json":
		return true
	case strings.Contains(lower, extensionID) && strings.HasSuffix(base, ".json"):
		return true
	case inRooDir(path) && (base == "config.json" || strings.HasPrefix(base, ".env")):
		return true
	}
	return false
}

func inRooDir(path string) bool {
	dir := filepath.Base(filepath.Dir(path))
	return dir == ".roo-code" || dir == ".roo_code"
}

// ParseConfig reads JSON settings. Files named .env* that are not JSON are
// read as KEY=value lines instead.
func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	c := &scanner.Collector{Source: path}

	doc, err := scanner.ParseJSON(path, content)
	if err != nil {
		if !strings.HasPrefix(filepath.Base(path), ".env") {
			log.Debug("skipping unparsable roo code config", "path", path, "error", err)
			return scanner.Failed(err)
		}
		c.Add(s.table.FromAssignments(path, scanner.EnvAssignments(content))...)
		return scanner.NewResult(s, path, c.Credentials(), nil)
	}

	topLevel(c, doc)
	extensionBlock(c, doc.Map("roo-cline"))
	manifest(c, doc.Path("contributes", "configuration", "properties"))

	meta := map[string]string{}
	if v, ok := doc.String("version"); ok && doc.Map("contributes") != nil {
		meta["extension_version"] = v
	}
	return scanner.NewResult(s, path, c.Credentials(), meta)
}

// topLevel handles exported provider profiles: {"apiProvider": "openai",
// "apiModelId": "gpt-4o", "openAiApiKey": "..."}.
func topLevel(c *scanner.Collector, doc scanner.Doc) {
	active := ""
	if v, ok := doc.String("apiProvider"); ok {
		active = scanner.NormalizeProvider(v)
	}
	for _, k := range doc.Keys() {
		v, ok := doc.String(k)
		if !ok {
			continue
		}
		lk := strings.ToLower(k)
		switch {
		case strings.Contains(lk, "roo") && strings.Contains(lk, "api") && strings.Contains(lk, "key"):
			c.Key(providerID, v)
		case strings.HasSuffix(lk, "apikey"):
			prov := scanner.InferProvider(k)
			if prov == "" {
				prov = active
			}
			c.Key(prov, v)
		case strings.HasSuffix(lk, "baseurl"):
			prov := scanner.InferProvider(k)
			if prov == "" {
				prov = active
			}
			c.Setting(prov, credential.BaseURL, v)
		}
	}
	if model, ok := doc.String("apiModelId"); ok {
		c.Setting(active, credential.ModelID, model)
	}
	if temp, ok := doc.String("modelTemperature"); ok {
		c.Setting(active, credential.Temperature, temp)
	}
}

// extensionBlock handles {"roo-cline": {"keys": {...}, "settings": {...}}}.
func extensionBlock(c *scanner.Collector, block scanner.Doc) {
	if block == nil {
		return
	}
	keys := block.Map("keys")
	for _, name := range keys.Keys() {
		if v, ok := keys.String(name); ok {
			c.Key(scanner.NormalizeProvider(name), v)
		}
	}
	settings := block.Map("settings")
	if settings == nil {
		return
	}
	prov, _ := settings.String("apiProvider")
	prov = scanner.NormalizeProvider(prov)
	if prov == "" {
		prov = providerID
	}
	for _, k := range []string{"apiModelId", "model"} {
		if v, ok := settings.String(k); ok {
			c.Setting(prov, credential.ModelID, v)
		}
	}
	if v, ok := settings.String("baseUrl"); ok {
		c.Setting(prov, credential.BaseURL, v)
	}
	if v, ok := settings.String("temperature"); ok {
		c.Setting(prov, credential.Temperature, v)
	}
}

// manifest handles defaults declared in an extension package.json.
func manifest(c *scanner.Collector, props scanner.Doc) {
	for _, name := range props.Keys() {
		ln := strings.ToLower(name)
		if !strings.Contains(ln, "api") || !strings.Contains(ln, "key") {
			continue
		}
		def, ok := props.Map(name).String("default")
		if !ok {
			continue
		}
		prov := scanner.InferProvider(name)
		if prov == "" {
			prov = providerID
		}
		c.Key(prov, def)
	}
}

func (s *Scanner) EnvVarSchema() []envvar.Declaration {
	return []envvar.Declaration{
		envvar.Required("ROOCODE_API_KEY", "API key for Roo Code", credential.APIKey),
		envvar.Optional("ROOCODE_BASE_URL", "API base URL for Roo Code", credential.BaseURL, "https://api.roocode.com/v1"),
		envvar.Optional("ROOCODE_MODEL_ID", "Model used by Roo Code", credential.ModelID, "roocode-70b"),
	}
}

func (s *Scanner) LabelMappings() []envvar.Mapping {
	return []envvar.Mapping{
		{Label: "smart", Group: "ROOCODE", Description: "Roo Code default model"},
	}
}
