// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the stoop command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/stoop"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/clean"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/debug"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/example"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/list"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/plan"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/run"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/show"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/matt-FFFFFF/stoop/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		list.ListCmd,
		plan.PlanCmd,
		clean.CleanCmd,
		show.ShowCmd,
		debug.DebugCmd,
		example.ExampleCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "stoop",
	Description: `Stoop runs a project's build, test and release tasks in dependency order.
Each task runs at most once per invocation, environment overrides stay scoped to the task
that declares them, and cleanup is safe to repeat. Tasks come from YAML or HCL task files,
or from the built-in catalog.`,
	Usage:     "stoop run test -- -k parser",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

// exitCode maps a run error to the process exit code. A failed command
// passes its own exit code through.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var cf *runner.CommandFailure
	if errors.As(err, &cf) && cf.ExitCode > 0 {
		return cf.ExitCode
	}

	return 1
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", stoop.Version, stoop.Commit)

	err := rootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(exitCode(err)) //nolint:gocritic
	}

	ctxlog.Info(ctx, "command completed successfully")
}
