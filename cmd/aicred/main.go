package main

import (
	"errors"
	"os"

	"github.com/robottwo/aicred-sub000/cmd/aicred/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
