package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/history"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent scans",
	Long: `List scans recorded by 'aicred scan'. History stores credential hashes
and metadata only, never values.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show the findings of one scan",
	Long:  `Show the findings of one scan. ID may be a unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of scans to show (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	if !globalCfg.History.Enabled {
		return nil, errors.New("scan history is disabled (history.enabled in config.yaml or AICRED_NO_HISTORY)")
	}
	return history.Open(globalCfg.History.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	scans, err := h.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if jsonOut {
		if scans == nil {
			scans = []history.Scan{}
		}
		return writeJSON(cmd.OutOrStdout(), scans)
	}
	if len(scans) == 0 {
		ui.Info("No scans recorded.")
		return nil
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tFILES\tFINDINGS\tERRORS\tSCANNERS")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(s.ID), intcli.FormatTimeAgo(s.StartedAt), s.Duration.Round(time.Millisecond),
			s.Files, s.Findings, s.Errors, strings.Join(s.Scanners, ","))
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	ctx := cmd.Context()
	id, err := expandScanID(cmd, h, args[0])
	if err != nil {
		return err
	}
	scan, err := h.Get(ctx, id)
	if err != nil {
		return err
	}
	findings, err := h.Findings(ctx, id)
	if err != nil {
		return err
	}

	if jsonOut {
		if findings == nil {
			findings = []history.Finding{}
		}
		return writeJSON(cmd.OutOrStdout(), struct {
			history.Scan
			Items []history.Finding `json:"items"`
		}{scan, findings})
	}

	out := cmd.OutOrStdout()
	ui.Section(out, "Scan "+scan.ID)
	fmt.Fprintf(out, "%s, %s in %s\n\n",
		scan.StartedAt.Local().Format(time.DateTime), intcli.Plural(scan.Files, "file"), scan.Duration.Round(time.Millisecond))
	if p := log.ScanLog(log.DebugDir(), scan.ID); p != "" {
		fmt.Fprintf(out, "Debug log: %s\n\n", intcli.ShortenPath(p, ""))
	}
	if len(findings) == 0 {
		ui.Info("No findings.")
		return nil
	}
	tw := newTable(out)
	fmt.Fprintln(tw, "#\tPROVIDER\tTYPE\tCONFIDENCE\tHASH\tSOURCE")
	for _, f := range findings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			f.Seq, f.Provider, f.ValueType, f.Confidence, intcli.Truncate(f.Hash, 12), intcli.ShortenPath(f.Source, scan.Home))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// expandScanID resolves a unique id prefix against all recorded scans.
func expandScanID(cmd *cobra.Command, h *history.Store, prefix string) (string, error) {
	scans, err := h.List(cmd.Context(), 0)
	if err != nil {
		return "", err
	}
	var match string
	for _, s := range scans {
		if s.ID == prefix {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("scan id %q is ambiguous", prefix)
			}
			match = s.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", history.ErrNotFound, prefix)
	}
	return match, nil
}
