// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the stoop run command.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/matt-FFFFFF/stoop/cmd/stoop/plan"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/project"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/matt-FFFFFF/stoop/internal/progress"
	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/matt-FFFFFF/stoop/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	forceFlag   = "force"
	variantFlag = "variant"
	tuiFlag     = "tui"
	outFlag     = "out"
	dryRunFlag  = "dry-run"

	// EnvVariant selects the default variant.
	EnvVariant = "STOOP_VARIANT"
)

var (
	// ErrNoTask is returned when no task name is given.
	ErrNoTask = errors.New("no task specified")
	// ErrWriteOutput is returned when the report cannot be saved.
	ErrWriteOutput = errors.New("failed to write output file")
)

// RunCmd runs a task and its prerequisites.
var RunCmd = &cli.Command{
	Name:      "run",
	Usage:     "Run a task and its prerequisites",
	ArgsUsage: "TASK [-- ARGS...]",
	Description: `Run a task after every prerequisite it depends on, each exactly once.
Arguments after -- are passed verbatim to the commands of TASK that accept them.

Task files use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.
Without -f the built-in catalog is used.`,
	Flags: slices.Concat(project.Flags(), []cli.Flag{
		&cli.BoolFlag{
			Name:     forceFlag,
			Usage:    "Run in force mode, adding each command's force arguments",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     variantFlag,
			Usage:    "Default variant for commands that do not name one",
			Sources:  cli.EnvVars(EnvVariant),
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     tuiFlag,
			Aliases:  []string{"t", "interactive"},
			Usage:    "Run with interactive Terminal User Interface (TUI) showing real-time progress",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Save the run report to this file, read it back with `stoop show`",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:     dryRunFlag,
			Aliases:  []string{"n"},
			Usage:    "Print the resolved commands without running them",
			OnlyOnce: true,
		},
	}),
	Action: actionFunc,
}

// taskAndArgs splits positional arguments into the task name and the
// pass-through arguments. The parser has already consumed the first "--",
// so anything left is forwarded verbatim.
func taskAndArgs(args cli.Args) (string, []string, error) {
	if !args.Present() {
		return "", nil, ErrNoTask
	}

	return args.First(), args.Tail(), nil
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	task, passArgs, err := taskAndArgs(cmd.Args())
	if err != nil {
		return err
	}

	p, err := project.Load(ctx, cmd)
	if err != nil {
		return err
	}

	mode := runner.ModeIncremental
	if cmd.Bool(forceFlag) {
		mode = runner.ModeForce
	}

	opts := []runner.Option{runner.WithMode(mode)}
	if v := cmd.String(variantFlag); v != "" {
		opts = append(opts, runner.WithDefaultVariant(v))
	}

	if cmd.Bool(dryRunFlag) {
		return plan.Write(cmd.Writer, p.Executor(opts...), task, passArgs)
	}

	ctx = ctxlog.With(ctx, "root", task)

	var report *runner.Report

	var runErr error

	switch cmd.Bool(tuiFlag) {
	case true:
		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		r := tui.NewRunner(tuiCtx, "stoop run "+task)
		report, runErr = r.Run(tuiCtx, func(ctx context.Context, rep progress.Reporter) (*runner.Report, error) {
			tuiOpts := append(slices.Clone(opts), runner.WithReporter(rep), runner.WithOutput(io.Discard, io.Discard))
			return p.Executor(tuiOpts...).Run(ctx, task, passArgs...)
		})

		buf.WriteTo(cmd.ErrWriter) //nolint:errcheck
	default:
		opts = append(opts, runner.WithOutput(cmd.Writer, cmd.ErrWriter))
		report, runErr = p.Executor(opts...).Run(ctx, task, passArgs...)
	}

	if report != nil {
		if err := report.WriteText(cmd.Writer); err != nil {
			ctxlog.Warn(ctx, "failed to write report", "error", err)
		}

		if err := save(cmd.String(outFlag), report); err != nil {
			return errors.Join(runErr, err)
		}
	}

	var cf *runner.CommandFailure
	if errors.As(runErr, &cf) {
		fmt.Fprintf(cmd.ErrWriter, "stoop: task %q failed running %q (exit code %d)\n", cf.Task, cf.Command, cf.ExitCode) //nolint:errcheck
	}

	return runErr
}

func save(name string, report *runner.Report) error {
	if name == "" {
		return nil
	}

	f, err := os.Create(name)
	if err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	defer f.Close() //nolint:errcheck

	if err := report.WriteBinary(f); err != nil {
		return errors.Join(ErrWriteOutput, err)
	}

	return nil
}
