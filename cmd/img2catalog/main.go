// Package main provides the entry point for the img2catalog CLI tool.
package main

import (
	"context"
	"os"

	"github.com/Health-RI/img2catalog/cmd/img2catalog/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Interrupts stop new writes; writes already in flight get a grace period
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Logger().Error().Err(err).Msg("img2catalog run failed")
		app.ExitOnError(err)
	}
}
