package cli

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/robottwo/aicred-sub000/internal/discovery"
	"github.com/robottwo/aicred-sub000/internal/keychain"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/scanners"
	"github.com/robottwo/aicred-sub000/internal/store"
)

func openStore() (*store.Store, error) {
	return store.Open(storeDir)
}

// newDiscovery configures a discovery run from the global config. Scanners
// disabled in config are skipped unless named explicitly. environ adds the
// process environment as a source.
func newDiscovery(names []string, environ bool) *discovery.Scanner {
	d := &discovery.Scanner{
		Registry:    scanners.NewRegistry(),
		Home:        homeDir,
		MaxFileSize: globalCfg.Scan.MaxFileSize,
		Parallelism: globalCfg.Scan.Parallelism,
		Names:       names,
		Models:      provider.DefaultRegistry(),
	}
	if len(names) == 0 {
		d.Skip = globalCfg.Scan.Disabled
	}
	if globalCfg.Scan.Keychain && len(names) == 0 {
		d.Sources = append(d.Sources, keychain.New())
	}
	if environ {
		d.Sources = append(d.Sources, &discovery.EnvironSource{})
	}
	return d
}

// loadInstances returns the saved provider instances followed by freshly
// discovered ones. Instances sharing an id are merged, saved values first.
func loadInstances(ctx context.Context, st *store.Store, scan bool) ([]*provider.Instance, error) {
	saved, err := st.LoadProviders()
	if err != nil {
		return nil, err
	}
	if !scan {
		return saved, nil
	}
	res, err := newDiscovery(nil, false).Run(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range res.Errors {
		log.Warn("source could not be read", "scanner", e.Scanner, "path", e.Path, "error", e.Err)
	}
	return provider.Merge(append(saved, res.Instances()...)...), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
