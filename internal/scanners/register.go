// Package scanners holds the builtin application scanners.
package scanners

import (
	"github.com/robottwo/aicred-sub000/internal/scanner"
	"github.com/robottwo/aicred-sub000/internal/scanners/claude"
	"github.com/robottwo/aicred-sub000/internal/scanners/codex"
	"github.com/robottwo/aicred-sub000/internal/scanners/goose"
	"github.com/robottwo/aicred-sub000/internal/scanners/gsh"
	"github.com/robottwo/aicred-sub000/internal/scanners/langchain"
	"github.com/robottwo/aicred-sub000/internal/scanners/ragit"
	"github.com/robottwo/aicred-sub000/internal/scanners/roocode"
)

// Builtin returns a fresh instance of every builtin scanner.
func Builtin() []scanner.Scanner {
	return []scanner.Scanner{
		gsh.New(),
		claude.New(),
		roocode.New(),
		langchain.New(),
		ragit.New(),
		codex.New(),
		goose.New(),
	}
}

// RegisterAll adds every builtin scanner to r.
func RegisterAll(r *scanner.Registry) error {
	for _, s := range Builtin() {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the builtin scanners.
func NewRegistry() *scanner.Registry {
	r := scanner.NewRegistry()
	if err := RegisterAll(r); err != nil {
		// Builtin names are unique.
		panic(err)
	}
	return r
}
