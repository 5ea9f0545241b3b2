package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/label"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/store"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var (
	labelDescription string
	labelColor       string
	labelsScanDryRun bool
	labelsScanNoScan bool
)

var labelsCmd = &cobra.Command{
	Use:     "labels",
	Aliases: []string{"label"},
	Short:   "Manage labels that name provider:model targets",
	Long: `A label is a short name such as "fast" or "smart" bound to a
provider:model target. Tools read one group of environment variables per
label, for example GSH_FAST_MODEL and GSH_FAST_API_KEY.`,
}

var labelsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List labels",
	Args:    cobra.NoArgs,
	RunE:    runLabelsList,
}

var labelsSetCmd = &cobra.Command{
	Use:   "set NAME PROVIDER:MODEL",
	Short: "Create or retarget a label",
	Example: `  aicred labels set fast groq:llama3-70b-8192
  aicred labels set smart anthropic:claude-3-5-sonnet --description "long context"`,
	Args: cobra.ExactArgs(2),
	RunE: runLabelsSet,
}

var labelsUnsetCmd = &cobra.Command{
	Use:     "unset NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a label",
	Args:    cobra.ExactArgs(1),
	RunE:    runLabelsUnset,
}

var labelsScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Assign labels from scan pattern files",
	Long: `For every <store>/scan/<label>.scan file, pick the provider:model whose
best matching pattern comes first in the file and assign the label to it.
Patterns are regular expressions matched against "provider:model", one per
line, in priority order.

A model id containing "/" (openrouter:deepseek/deepseek-v3.2-exp) resolves
for setenv and wrap, but 'providers list' does not show the label next to
it: there the part before "/" must equal the provider.`,
	Args: cobra.NoArgs,
	RunE: runLabelsScan,
}

func init() {
	labelsSetCmd.Flags().StringVar(&labelDescription, "description", "", "label description")
	labelsSetCmd.Flags().StringVar(&labelColor, "color", "", "label color for display")
	labelsScanCmd.Flags().BoolVar(&labelsScanDryRun, "dry-run", false, "show assignments without saving")
	labelsScanCmd.Flags().BoolVar(&labelsScanNoScan, "no-scan", false, "match saved providers only")
	labelsCmd.AddCommand(labelsListCmd, labelsSetCmd, labelsUnsetCmd, labelsScanCmd)
	rootCmd.AddCommand(labelsCmd)
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	labels, _, err := st.LoadLabels()
	if err != nil {
		return err
	}

	if jsonOut {
		if labels == nil {
			labels = []label.Label{}
		}
		return writeJSON(cmd.OutOrStdout(), labels)
	}
	if len(labels) == 0 {
		ui.Info("No labels. Create one with 'aicred labels set NAME PROVIDER:MODEL'.")
		return nil
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "NAME\tTARGET\tDESCRIPTION\tUPDATED")
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ui.Bold(l.Name), l.Target, l.Description, intcli.FormatTimeAgo(l.UpdatedAt))
	}
	return tw.Flush()
}

func runLabelsSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	target, err := label.ParseTuple(args[1])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	labels, tok, err := st.LoadLabels()
	if err != nil {
		return err
	}
	labels = label.Assign(labels, name, target)
	for i := range labels {
		if labels[i].Name != name {
			continue
		}
		if cmd.Flags().Changed("description") {
			labels[i].Description = labelDescription
		}
		if cmd.Flags().Changed("color") {
			labels[i].Color = labelColor
		}
	}
	if _, err := st.SaveLabels(labels, tok); err != nil {
		return err
	}

	log.Debug("label set", "label", name, "target", target.String())
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", ui.OKTag(), name, target)
	return nil
}

func runLabelsUnset(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.UnsetLabel(args[0]); err != nil {
		if errors.Is(err, store.ErrLabelNotFound) {
			return fmt.Errorf("no label %q", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.OKTag(), args[0])
	return nil
}

type labelAssignment struct {
	Label   string `json:"label"`
	Target  string `json:"target,omitempty"`
	Pattern int    `json:"pattern"`
}

func runLabelsScan(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	names, err := st.ScanLabels()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		ui.Infof("No scan files in %s.", intcli.ShortenPath(filepath.Join(st.Dir(), "scan"), ""))
		return nil
	}

	instances, err := loadInstances(cmd.Context(), st, !labelsScanNoScan)
	if err != nil {
		return err
	}
	candidates := label.Candidates(instances)

	labels, tok, err := st.LoadLabels()
	if err != nil {
		return err
	}

	var results []labelAssignment
	changed := false
	for _, name := range names {
		patterns, err := st.LoadScanPatterns(name)
		if err != nil {
			return err
		}
		if patterns == nil {
			continue
		}
		m, ok := patterns.Best(candidates)
		if !ok {
			results = append(results, labelAssignment{Label: name, Pattern: -1})
			continue
		}
		target := label.Tuple{Provider: m.Candidate.Provider, Model: m.Candidate.Model}
		results = append(results, labelAssignment{Label: name, Target: target.String(), Pattern: m.Pattern})
		if cur, ok := label.Find(labels, name); ok && cur.Target == target {
			continue
		}
		labels = label.Assign(labels, name, target)
		changed = true
	}

	if changed && !labelsScanDryRun {
		if _, err := st.SaveLabels(labels, tok); err != nil {
			return err
		}
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Target == "" {
			fmt.Fprintf(out, "%s %s: no model matches\n", ui.WarnTag(), r.Label)
			continue
		}
		fmt.Fprintf(out, "%s %s → %s %s\n", ui.OKTag(), r.Label, r.Target, ui.Dim(fmt.Sprintf("(pattern %d)", r.Pattern+1)))
	}
	if labelsScanDryRun {
		ui.Info("Dry run: labels not saved.")
	}
	return nil
}
