// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package plan implements the stoop plan command.
package plan

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/stoop/cmd/stoop/project"
	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/urfave/cli/v3"
)

// ErrNoTask is returned when no task name is given.
var ErrNoTask = errors.New("no task specified")

// PlanCmd prints the commands a run would execute, in order.
var PlanCmd = &cli.Command{
	Name:      "plan",
	Usage:     "Show the resolved order and commands of a task",
	ArgsUsage: "TASK [-- ARGS...]",
	Flags:     project.Flags(),
	Action: func(ctx context.Context, cmd *cli.Command) error {
		if !cmd.Args().Present() {
			return ErrNoTask
		}

		p, err := project.Load(ctx, cmd)
		if err != nil {
			return err
		}

		args := cmd.Args().Tail()
		if len(args) > 0 && args[0] == "--" {
			args = args[1:]
		}

		return Write(cmd.Writer, p.Executor(), cmd.Args().First(), args)
	},
}

// Write prints one line per composed command of task.
func Write(w io.Writer, exec *runner.Executor, task string, args []string) error {
	steps, err := exec.Plan(task, args...)
	if err != nil {
		return err
	}

	for _, st := range steps {
		if _, err := fmt.Fprintf(w, "%s: %s\n", st.Task, st.String()); err != nil {
			return err
		}
	}

	return nil
}
