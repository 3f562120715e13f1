// Package main provides the entry point for the vercheck CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/vercheck/internal/cli"
)

// Build information set via ldflags.
var (
	version = "dev"     //nolint:gochecknoglobals // set at build time
	commit  = "none"    //nolint:gochecknoglobals // set at build time
	date    = "unknown" //nolint:gochecknoglobals // set at build time
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
