package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/log"
	"github.com/robottwo/aicred-sub000/internal/ui"
)

var (
	wrapScanner string
	wrapDryRun  bool
	wrapNoScan  bool
	wrapEnv     []string
)

var wrapCmd = &cobra.Command{
	Use:   "wrap [flags] -- COMMAND [ARGS...]",
	Short: "Run a command with label variables in its environment",
	Long: `Resolve labels like 'aicred setenv' and run COMMAND with the resulting
variables added to the current environment. The command's exit code is
returned.

The command is not started while any required variable is missing. With
--dry-run the variables are printed with API keys masked and nothing runs.`,
	Example: `  aicred wrap -- gsh
  aicred wrap --scanner roocode -- code .
  aicred wrap --dry-run -- gsh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrap,
}

func init() {
	wrapCmd.Flags().SetInterspersed(false)
	wrapCmd.Flags().StringVar(&wrapScanner, "scanner", "", "use this scanner's variable schema")
	wrapCmd.Flags().BoolVar(&wrapDryRun, "dry-run", false, "print the masked environment without running the command")
	wrapCmd.Flags().BoolVar(&wrapNoScan, "no-scan", false, "resolve against saved providers only")
	wrapCmd.Flags().StringArrayVarP(&wrapEnv, "env", "e", nil, "extra environment variables (KEY=VALUE)")
	rootCmd.AddCommand(wrapCmd)
}

func runWrap(cmd *cobra.Command, args []string) error {
	extra, err := intcli.ParseEnvFlags(wrapEnv)
	if err != nil {
		return err
	}
	res, err := resolveEnv(cmd.Context(), wrapScanner, !wrapNoScan, wrapDryRun)
	if err != nil {
		return err
	}
	for _, l := range res.UnresolvedLabels {
		ui.Warnf("label %q matches no provider instance", l)
	}

	vars := make(map[string]string, len(res.Variables)+len(extra))
	for k, v := range res.Variables {
		vars[k] = v
	}
	for k, v := range extra {
		vars[k] = v
	}

	if wrapDryRun {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Would run: %s\n", strings.Join(args, " "))
		for _, k := range sortedKeys(vars) {
			fmt.Fprintf(out, "  %s=%s\n", k, vars[k])
		}
		if !res.IsSuccessful() {
			fmt.Fprintf(out, "%s %s\n", ui.WarnTag(), missingError(res))
		}
		return nil
	}

	if !res.IsSuccessful() {
		return fmt.Errorf("not running %s: %w", args[0], missingError(res))
	}

	child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
	child.Env = intcli.MergeEnviron(os.Environ(), vars)
	child.Stdin = cmd.InOrStdin()
	child.Stdout = cmd.OutOrStdout()
	child.Stderr = cmd.ErrOrStderr()

	log.Debug("running wrapped command", "command", args[0], "variables", len(vars))
	if err := child.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				code = 1
			}
			return &ExitError{Code: code}
		}
		return fmt.Errorf("running %s: %w", args[0], err)
	}
	return nil
}
