package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	intcli "github.com/robottwo/aicred-sub000/internal/cli"
	"github.com/robottwo/aicred-sub000/internal/scanner"
	"github.com/robottwo/aicred-sub000/internal/scanners"
)

var scannersCmd = &cobra.Command{
	Use:   "scanners",
	Short: "List supported tools and the files they are read from",
	Args:  cobra.NoArgs,
	RunE:  runScanners,
}

func init() {
	rootCmd.AddCommand(scannersCmd)
}

type scannerInfo struct {
	Name    string   `json:"name"`
	AppName string   `json:"app_name"`
	Paths   []string `json:"paths"`
	Schema  bool     `json:"schema"`
}

func runScanners(cmd *cobra.Command, args []string) error {
	home := homeDir
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		home = h
	}

	var infos []scannerInfo
	for _, s := range scanners.NewRegistry().All() {
		decls, _ := scanner.Schema(s)
		infos = append(infos, scannerInfo{
			Name:    s.Name(),
			AppName: s.AppName(),
			Paths:   s.ScanPaths(home),
			Schema:  len(decls) > 0,
		})
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), infos)
	}

	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "NAME\tAPP\tSETENV\tPATHS")
	for _, info := range infos {
		paths := make([]string, len(info.Paths))
		for i, p := range info.Paths {
			paths[i] = intcli.ShortenPath(p, home)
		}
		schema := "default"
		if info.Schema {
			schema = "schema"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.AppName, schema, strings.Join(paths, ", "))
	}
	return tw.Flush()
}
