package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/credential"
	"github.com/robottwo/aicred-sub000/internal/label"
	"github.com/robottwo/aicred-sub000/internal/provider"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var providersCmd = &cobra.Command{
	Use:     "providers",
	Aliases: []string{"provider"},
	Short:   "Manage saved provider instances",
	Long: `Manage provider instances saved with 'aicred scan --save'.

API keys are never printed; only a redacted suffix is shown.`,
}

var providersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved provider instances",
	Args:    cobra.NoArgs,
	RunE:    runProvidersList,
}

var providersShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one saved provider instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runProvidersShow,
}

var providersRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Delete a saved provider instance",
	Args:    cobra.ExactArgs(1),
	RunE:    runProvidersRemove,
}

func init() {
	providersCmd.AddCommand(providersListCmd, providersShowCmd, providersRemoveCmd)
	rootCmd.AddCommand(providersCmd)
}

// providerView is the JSON shape of an instance. The key is redacted.
type providerView struct {
	*provider.Instance
	Key    string   `json:"api_key,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

func viewOf(inst *provider.Instance, labels []label.Label) providerView {
	v := providerView{Instance: inst}
	if inst.HasAPIKey() {
		v.Key = credential.Redact(inst.Key())
	}
	v.Labels = labelsFor(inst, labels)
	return v
}

func labelsFor(inst *provider.Instance, labels []label.Label) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(ns []string) {
		for _, n := range ns {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	if len(inst.Models) == 0 {
		add(label.ForTarget(labels, inst.ProviderType, ""))
	}
	for _, m := range inst.Models {
		add(label.ForTarget(labels, inst.ProviderType, m.ID))
	}
	return names
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	instances, err := st.LoadProviders()
	if err != nil {
		return err
	}
	labels, _, err := st.LoadLabels()
	if err != nil {
		return err
	}

	if jsonOut {
		views := make([]providerView, 0, len(instances))
		for _, inst := range instances {
			views = append(views, viewOf(inst, labels))
		}
		return writeJSON(cmd.OutOrStdout(), views)
	}

	if len(instances) == 0 {
		ui.Info("No saved providers. Run 'aicred scan --save' to save discovered ones.")
		return nil
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tTYPE\tKEY\tMODELS\tLABELS\tUPDATED")
	for _, inst := range instances {
		key := "-"
		if inst.HasAPIKey() {
			key = ui.Secret(inst.Key())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			inst.ID, inst.ProviderType, key, len(inst.Models),
			strings.Join(labelsFor(inst, labels), ","), intcli.FormatTimeAgo(inst.UpdatedAt))
	}
	return tw.Flush()
}

func runProvidersShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	inst, err := st.LoadProvider(args[0])
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return fmt.Errorf("no saved provider %q (see 'aicred providers list')", args[0])
		}
		return err
	}
	labels, _, err := st.LoadLabels()
	if err != nil {
		return err
	}

	v := viewOf(inst, labels)
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), v)
	}

	out := cmd.OutOrStdout()
	ui.Section(out, inst.ID)
	tw := newTable(out)
	fmt.Fprintf(tw, "Type:\t%s\n", inst.ProviderType)
	if inst.BaseURL != "" {
		fmt.Fprintf(tw, "Base URL:\t%s\n", inst.BaseURL)
	}
	if inst.HasAPIKey() {
		fmt.Fprintf(tw, "API key:\t%s\n", ui.Secret(inst.Key()))
	}
	if inst.Source != "" {
		fmt.Fprintf(tw, "Source:\t%s\n", intcli.ShortenPath(inst.Source, homeDir))
	}
	fmt.Fprintf(tw, "Active:\t%t\n", inst.Active)
	if len(v.Labels) > 0 {
		fmt.Fprintf(tw, "Labels:\t%s\n", strings.Join(v.Labels, ", "))
	}
	fmt.Fprintf(tw, "Updated:\t%s\n", intcli.FormatTimeAgo(inst.UpdatedAt))
	tw.Flush()

	if len(inst.Models) > 0 {
		fmt.Fprintln(out)
		tw = newTable(out)
		fmt.Fprintln(tw, "MODEL\tNAME\tCONTEXT")
		for _, m := range inst.Models {
			ctxWin := "-"
			if m.ContextWindow > 0 {
				ctxWin = fmt.Sprintf("%d", m.ContextWindow)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Name, ctxWin)
		}
		tw.Flush()
	}
	if len(inst.Metadata) > 0 {
		fmt.Fprintln(out)
		tw = newTable(out)
		fmt.Fprintln(tw, "SETTING\tVALUE")
		for _, k := range sortedKeys(inst.Metadata) {
			fmt.Fprintf(tw, "%s\t%s\n", k, inst.Metadata[k])
		}
		tw.Flush()
	}
	return nil
}

func runProvidersRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.DeleteProvider(args[0]); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return fmt.Errorf("no saved provider %q", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.OKTag(), args[0])
	return nil
}
