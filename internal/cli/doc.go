// Package cli provides display and flag helpers shared by the aicred
// commands. It must not import cmd/aicred/cli.
package cli
