// Package scanner defines the contract for per-application configuration
// scanners and shared extraction helpers.
//
// Scanners are pure: ParseConfig sees only a path and its content and never
// touches the filesystem. Content that cannot be parsed yields an empty
// Result rather than an error.
package scanner

import (
	"errors"
	"time"

	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/id"
	"github.com/robottwo/aicred-sub000/internal/provider"
)

// Scanner turns one application's configuration files into credentials.
type Scanner interface {
	// Name is the unique registry key, e.g. "gsh".
	Name() string
	// AppName is the human-readable application name.
	AppName() string
	// ScanPaths lists candidate files under home. Entries may be glob
	// patterns and need not exist.
	ScanPaths(home string) []string
	// CanHandleFile reports whether path looks like one of this scanner's files.
	CanHandleFile(path string) bool
	// ParseConfig extracts credentials from content.
	ParseConfig(path string, content []byte) Result
}

// SchemaProvider is implemented by scanners whose application reads a known
// set of environment variables.
type SchemaProvider interface {
	EnvVarSchema() []envvar.Declaration
	LabelMappings() []envvar.Mapping
}

// Schema returns s's declarations and mappings, or nil for scanners that do
// not implement SchemaProvider.
func Schema(s Scanner) ([]envvar.Declaration, []envvar.Mapping) {
	sp, ok := s.(SchemaProvider)
	if !ok {
		return nil, nil
	}
	return sp.EnvVarSchema(), sp.LabelMappings()
}

// ConfigInstance is one discovered application configuration.
type ConfigInstance struct {
	ID           string               `json:"instance_id"`
	AppName      string               `json:"app_name"`
	ConfigPath   string               `json:"config_path"`
	DiscoveredAt time.Time            `json:"discovered_at"`
	Metadata     map[string]string    `json:"metadata,omitempty"`
	Providers    []*provider.Instance `json:"providers,omitempty"`
}

// Result is what ParseConfig returns.
type Result struct {
	Keys      []credential.Credential `json:"keys"`
	Instances []ConfigInstance        `json:"instances"`
	// Errors holds structural failures the caller should see, such as a
	// *provider.ConfigError. Malformed content is not reported here.
	Errors []error `json:"-"`
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Keys) == 0 && len(r.Instances) == 0
}

// Failed converts a document decoding error into a Result. Parse errors are
// recovered into an empty Result; configuration errors are kept in Errors.
func Failed(err error) Result {
	var cerr *provider.ConfigError
	if errors.As(err, &cerr) {
		return Result{Errors: []error{err}}
	}
	return Result{}
}

// NewResult deduplicates creds, assembles provider instances from them and
// wraps both in a Result with a single ConfigInstance for path. It returns
// an empty Result when creds is empty.
func NewResult(s Scanner, path string, creds []credential.Credential, metadata map[string]string) Result {
	keys := credential.Deduplicate(creds)
	if len(keys) == 0 {
		return Result{}
	}
	asm := &provider.Assembler{}
	return Result{
		Keys: keys,
		Instances: []ConfigInstance{{
			ID:           id.Stable("cfg", s.Name(), path),
			AppName:      s.AppName(),
			ConfigPath:   path,
			DiscoveredAt: time.Now().UTC(),
			Metadata:     metadata,
			Providers:    asm.Assemble(path, keys),
		}},
	}
}
