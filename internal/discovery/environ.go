package discovery

import (
	"context"
	"os"
	"strings"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/scanner"
)

// EnvironSource reports credentials exported in the process environment,
// such as OPENAI_API_KEY, using the env pattern table.
type EnvironSource struct {
	// Table defaults to scanner.DefaultEnvTable.
	Table *scanner.EnvTable
	// Environ defaults to os.Environ.
	Environ func() []string
}

func (s *EnvironSource) Name() string    { return "environment" }
func (s *EnvironSource) AppName() string { return "Process environment" }

// Discover matches every NAME=value pair against the table. Each credential's
// source is "env:NAME".
func (s *EnvironSource) Discover(ctx context.Context) ([]credential.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table := s.Table
	if table == nil {
		table = scanner.DefaultEnvTable()
	}
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}

	var out []credential.Credential
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		out = append(out, table.FromAssignments("env:"+name, []scanner.Assignment{{Name: name, Value: value}})...)
	}
	return out, nil
}
