package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/envvar"
	"github.com/robottwo/aicred-sub000/internal/label"
	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the store for invalid documents and dangling labels",
	Long: `Load every document in the store and check that labels and provider
instances are valid, scan pattern files compile, and every label resolves
to a saved provider instance. Exits non-zero on any problem.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

type validateCheck struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	var checks []validateCheck
	check := func(name string, err error) {
		c := validateCheck{Name: name}
		if err != nil {
			c.Error = err.Error()
		}
		checks = append(checks, c)
	}

	labels, _, err := st.LoadLabels()
	check("labels.yaml: "+intcli.Plural(len(labels), "label"), err)

	instances, err := st.LoadProviders()
	if err == nil {
		err = provider.ValidateSet(instances)
	}
	check("providers: "+intcli.Plural(len(instances), "instance"), err)

	names, err := st.ScanLabels()
	if err != nil {
		check("scan files", err)
	}
	for _, n := range names {
		_, err := st.LoadScanPatterns(n)
		check("scan/"+n+".scan", err)
	}

	if len(labels) > 0 {
		res := envvar.NewResolver(instances, labels, nil, nil).Resolve(true)
		for _, n := range res.ResolvedLabels {
			l, _ := label.Find(labels, n)
			check(fmt.Sprintf("label %s → %s", n, l.Target), nil)
		}
		for _, n := range res.UnresolvedLabels {
			l, _ := label.Find(labels, n)
			check(fmt.Sprintf("label %s → %s", n, l.Target), fmt.Errorf("no saved provider instance offers %s", l.Target))
		}
	}

	failed := 0
	for _, c := range checks {
		if c.Error != "" {
			failed++
		}
	}

	if jsonOut {
		if err := writeJSON(cmd.OutOrStdout(), checks); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, c := range checks {
			if c.Error == "" {
				fmt.Fprintf(out, "%s %s\n", ui.OKTag(), c.Name)
				continue
			}
			fmt.Fprintf(out, "%s %s: %s\n", ui.FailTag(), c.Name, c.Error)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%s found", intcli.Plural(failed, "problem"))
	}
	return nil
}
