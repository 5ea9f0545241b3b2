package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/discovery"
	"github.com/robottwo/aicred-sub000/internal/history"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var (
	scanScanners  []string
	scanSave      bool
	scanNoHistory bool
	scanEnviron   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover credentials in local tool configuration",
	Long: `Scan the home directory for configuration files of supported tools and
report the credentials and provider instances found. Values are always
redacted in output.

Use --save to write the discovered provider instances to the store so that
labels can resolve against them later.`,
	Example: `  aicred scan
  aicred scan --scanner gsh --scanner roocode
  aicred scan --save
  aicred scan --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringArrayVar(&scanScanners, "scanner", nil, "limit the scan to this scanner (repeatable)")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "save discovered provider instances to the store")
	scanCmd.Flags().BoolVar(&scanEnviron, "env", false, "also report credentials exported in the current environment")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "do not record this scan in history")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	scanID := uuid.NewString()
	log.SetScanID(scanID)

	res, err := newDiscovery(scanScanners, scanEnviron).Run(ctx)
	if err != nil {
		return err
	}
	instances := res.Instances()

	var fresh map[string]bool
	if globalCfg.History.Enabled && !scanNoHistory {
		fresh, err = recordScan(cmd, scanID, res)
		if err != nil {
			// History is auxiliary; the scan itself succeeded.
			log.Warn("recording scan history", "error", err)
		}
	}

	if scanSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		for _, inst := range instances {
			if err := st.SaveProvider(inst); err != nil {
				return fmt.Errorf("saving provider %s: %w", inst.ID, err)
			}
		}
		log.Debug("saved provider instances", "count", len(instances), "store", st.Dir())
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), struct {
			ID string `json:"id"`
			*discovery.Result
			Providers []*provider.Instance `json:"providers"`
		}{scanID, res, instances})
	}

	out := cmd.OutOrStdout()
	for _, e := range res.Errors {
		ui.Warnf("%s", e.Error())
	}
	if len(res.Keys) == 0 && len(instances) == 0 {
		ui.Info("No credentials found.")
		return nil
	}

	ui.Section(out, "Sources")
	tw := newTable(out)
	fmt.Fprintln(tw, "APP\tPATH\tPROVIDERS")
	for _, c := range res.Configs {
		ids := make([]string, 0, len(c.Providers))
		for _, p := range c.Providers {
			ids = append(ids, p.ID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.AppName, intcli.ShortenPath(c.ConfigPath, res.Home), strings.Join(ids, ", "))
	}
	tw.Flush()

	fmt.Fprintln(out)
	ui.Section(out, "Findings")
	tw = newTable(out)
	if fresh != nil {
		fmt.Fprintln(tw, "PROVIDER\tTYPE\tCONFIDENCE\tVALUE\tSOURCE\tSEEN")
	} else {
		fmt.Fprintln(tw, "PROVIDER\tTYPE\tCONFIDENCE\tVALUE\tSOURCE")
	}
	for _, k := range res.Keys {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s", k.Provider, k.ValueType.Key(), ui.ConfidenceTag(k.Confidence), ui.Dim(k.Redacted()), intcli.ShortenPath(k.Source, res.Home))
		if fresh != nil {
			seen := "before"
			if fresh[k.Hash] {
				seen = ui.Cyan("new")
			}
			fmt.Fprintf(tw, "\t%s", seen)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s across %s from %s in %s\n",
		intcli.Plural(len(res.Keys), "finding"),
		intcli.Plural(len(instances), "provider"),
		intcli.Plural(res.Files, "file"),
		res.Duration.Round(time.Millisecond))
	if scanSave {
		fmt.Fprintf(out, "%s Saved %s\n", ui.OKTag(), intcli.Plural(len(instances), "provider"))
	}
	return nil
}

// recordScan stores res in history and reports which credential hashes had
// never been seen before this scan.
func recordScan(cmd *cobra.Command, id string, res *discovery.Result) (map[string]bool, error) {
	ctx := cmd.Context()
	h, err := history.Open(globalCfg.History.Path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	fresh := make(map[string]bool, len(res.Keys))
	for _, k := range res.Keys {
		_, seen, err := h.FirstSeen(ctx, k.Hash)
		if err != nil {
			return nil, err
		}
		fresh[k.Hash] = !seen
	}

	scan, findings := history.FromResult(res)
	scan.ID = id
	if _, err := h.Record(ctx, scan, findings); err != nil {
		return nil, err
	}
	return fresh, nil
}
