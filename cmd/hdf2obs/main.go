// Package main is the entry point for the hdf2obs CLI.
//
// All functionality lives in internal/cli, which defines the cobra
// commands. Build-time variables (version, commit, date) are injected
// via ldflags and default to development placeholders.
package main

import (
	"github.com/mmr-tortoise/hdf2obs/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
