// Package cli implements the aicred command-line interface using Cobra.
// It provides commands for discovering AI credentials, labeling
// provider:model targets and exporting them as environment variables.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robottwo/aicred-sub000/internal/config"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/store"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var (
	verbose  bool
	jsonOut  bool
	homeDir  string
	storeDir string

	// Set by PersistentPreRunE.
	globalCfg *config.GlobalConfig
)

var rootCmd = &cobra.Command{
	Use:   "aicred",
	Short: "Discover and manage AI provider credentials",
	Long: `aicred finds AI provider credentials in the configuration files of
local tools (gsh, Claude Desktop, Roo Code, LangChain, ragit, Codex, Goose),
groups them into provider instances, and maps named labels such as "fast"
or "smart" onto provider:model targets.

Labels resolve into environment variables for the tools that read them:
  aicred scan                       Show what was found
  aicred labels set fast groq:llama3-70b-8192
  eval "$(aicred setenv --scanner gsh)"
  aicred wrap -- gsh                Run a command with the labels applied`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if storeDir == "" {
			dir, err := store.DefaultDir()
			if err != nil {
				return err
			}
			storeDir = dir
		}

		cfg, err := config.LoadGlobal(storeDir)
		if err != nil {
			return err
		}
		globalCfg = cfg

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      filepath.Join(storeDir, "debug"),
			RetentionDays: cfg.Debug.RetentionDays,
			Stderr:        cmd.ErrOrStderr(),
		}); err != nil {
			// Non-fatal: the default logger stays in place.
			cmd.PrintErrf("Warning: failed to initialize debug logging: %v\n", err)
		}

		if jsonOut {
			ui.SetColorEnabled(false)
		}
		return nil
	},
}

// Execute runs the root command. Errors other than a child's exit status
// are printed to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer log.Close()

	err := rootCmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		ui.Error(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "home directory to scan (default: current user's home)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "label and provider store directory (env: AICRED_HOME)")
}
