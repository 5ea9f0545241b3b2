package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/scanner"
	"github.com/robottwo/aicred-sub000/internal/scanners"
	"github.com/robottwo/aicred-sub000/internal/term"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var (
	setenvScanner string
	setenvFormat  string
	setenvDryRun  bool
	setenvNoScan  bool
)

var setenvCmd = &cobra.Command{
	Use:   "setenv",
	Short: "Print shell statements exporting label variables",
	Long: `Resolve every label against the known provider instances and print
export statements for the variables a tool reads.

With --scanner the tool's own variable schema is used; otherwise every label
is exported under each default prefix (GSH, ROO_CODE, CLAUDE_DESKTOP, RAGIT,
LANGCHAIN). Output contains API keys unless --dry-run is given.`,
	Example: `  eval "$(aicred setenv --scanner gsh)"
  aicred setenv --format fish | source
  aicred setenv --dry-run`,
	Args: cobra.NoArgs,
	RunE: runSetenv,
}

func init() {
	setenvCmd.Flags().StringVar(&setenvScanner, "scanner", "", "use this scanner's variable schema")
	setenvCmd.Flags().StringVar(&setenvFormat, "format", "bash", "output format: "+strings.Join(envvar.Shells, ", "))
	setenvCmd.Flags().BoolVar(&setenvDryRun, "dry-run", false, "mask API keys and do not fail on missing variables")
	setenvCmd.Flags().BoolVar(&setenvNoScan, "no-scan", false, "resolve against saved providers only")
	rootCmd.AddCommand(setenvCmd)
}

// resolveEnv resolves the stored labels with the named scanner's schema, or
// the default schema when name is empty.
func resolveEnv(ctx context.Context, name string, scan, dryRun bool) (*envvar.Result, error) {
	var (
		decls    []envvar.Declaration
		mappings []envvar.Mapping
	)
	if name != "" {
		reg := scanners.NewRegistry()
		sc := reg.Get(name)
		if sc == nil {
			return nil, fmt.Errorf("%w: %s (available: %s)", scanner.ErrUnknownScanner, name, strings.Join(reg.Names(), ", "))
		}
		decls, mappings = scanner.Schema(sc)
	}

	st, err := openStore()
	if err != nil {
		return nil, err
	}
	labels, _, err := st.LoadLabels()
	if err != nil {
		return nil, err
	}
	instances, err := loadInstances(ctx, st, scan)
	if err != nil {
		return nil, err
	}
	return envvar.NewResolver(instances, labels, decls, mappings).Resolve(dryRun), nil
}

func missingError(res *envvar.Result) error {
	return fmt.Errorf("missing required variables: %s", strings.Join(res.MissingRequired, ", "))
}

func runSetenv(cmd *cobra.Command, args []string) error {
	res, err := resolveEnv(cmd.Context(), setenvScanner, !setenvNoScan, setenvDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		exports, err := envvar.FormatExports(res.Variables, setenvFormat)
		if err != nil {
			return err
		}
		if f, ok := out.(*os.File); ok && !setenvDryRun && term.IsTerminal(f) {
			ui.Warn("printing API keys to the terminal; use eval \"$(aicred setenv)\" or --dry-run")
		}
		fmt.Fprint(out, exports)
	}

	for _, l := range res.UnresolvedLabels {
		ui.Warnf("label %q matches no provider instance", l)
	}
	if !setenvDryRun && !res.IsSuccessful() {
		return missingError(res)
	}
	return nil
}
