// Package goose scans Goose's config.yaml and benchmark .env file.
package goose

import (
	"path/filepath"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

// Scanner implements scanner.Scanner.
type Scanner struct {
	table *scanner.EnvTable
}

// New returns a Goose scanner.
func New() *Scanner {
	return &Scanner{table: scanner.DefaultEnvTable()}
}

func (s *Scanner) Name() string    { return "goose" }
func (s *Scanner) AppName() string { return "Goose" }

func (s *Scanner) ScanPaths(home string) []string {
	return []string{
		filepath.Join(home, ".config", "goose", "config.yaml"),
		filepath.Join(home, "Library", "Application Support", "Goose", "config.yaml"),
		filepath.Join(home, ".goosebench.env"),
	}
}

func (s *Scanner) CanHandleFile(path string) bool {
	if filepath.Base(path) == ".goosebench.env" {
		return true
	}
	dir := strings.ToLower(filepath.Base(filepath.Dir(path)))
	return dir == "goose" && strings.HasSuffix(path, ".yaml")
}

// ParseConfig reads provider selection and any keys stored inline. Goose
// normally keeps secrets in the system keyring, so a config often yields
// only the provider and model.
func (s *Scanner) ParseConfig(path string, content []byte) scanner.Result {
	c := &scanner.Collector{Source: path}
	if strings.HasSuffix(path, ".env") {
		c.Add(s.table.FromAssignments(path, scanner.EnvAssignments(content))...)
		return scanner.NewResult(s, path, c.Credentials(), nil)
	}

	doc, err := scanner.ParseYAML(path, content)
	if err != nil {
		log.Debug("skipping unparsable goose config", "path", path, "error", err)
		return scanner.Failed(err)
	}

	active := ""
	if v, ok := doc.String("GOOSE_PROVIDER"); ok {
		active = scanner.NormalizeProvider(v)
	}
	if v, ok := doc.String("GOOSE_MODEL"); ok && active != "" {
		c.Setting(active, credential.ModelID, v)
	}
	if v, ok := doc.String("GOOSE_TEMPERATURE"); ok && active != "" {
		c.Setting(active, credential.Temperature, v)
	}

	var assigns []scanner.Assignment
	for _, k := range doc.Keys() {
		v, ok := doc.String(k)
		if !ok {
			continue
		}
		if strings.HasSuffix(k, "_HOST") {
			if prov := scanner.InferProvider(k); prov != "" {
				c.Setting(prov, credential.BaseURL, v)
			}
			continue
		}
		assigns = append(assigns, scanner.Assignment{Name: k, Value: v})
	}

	exts := doc.Map("extensions")
	for _, name := range exts.Keys() {
		envs := exts.Map(name).Map("envs")
		for _, k := range envs.Keys() {
			if v, ok := envs.String(k); ok {
				assigns = append(assigns, scanner.Assignment{Name: k, Value: v})
			}
		}
	}
	c.Add(s.table.FromAssignments(path, assigns)...)

	meta := map[string]string{}
	if active != "" {
		meta["provider"] = active
	}
	return scanner.NewResult(s, path, c.Credentials(), meta)
}
