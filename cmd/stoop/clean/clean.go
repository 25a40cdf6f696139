// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package clean implements the stoop clean command.
package clean

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/stoop/cmd/stoop/project"
	"github.com/matt-FFFFFF/stoop/internal/config"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const taskFlag = "task"

// ErrNoCleanup is returned when the task has no cleanup commands.
var ErrNoCleanup = errors.New("task has no cleanup commands")

// CleanCmd runs the cleanup managers of a task without running any process.
var CleanCmd = &cli.Command{
	Name:  "clean",
	Usage: "Run the cleanup managers of the clean task directly",
	Description: `Delete the paths, globs and names of every cleanup manager used by the task,
without running its other commands or its prerequisites. Missing files are not an error,
so running clean twice is safe.`,
	Flags: append(project.Flags(), &cli.StringFlag{
		Name:     taskFlag,
		Usage:    "Task whose cleanup managers are run",
		Value:    "clean",
		OnlyOnce: true,
	}),
	Action: func(ctx context.Context, cmd *cli.Command) error {
		p, err := project.Load(ctx, cmd)
		if err != nil {
			return err
		}

		return Run(ctx, cmd.Writer, p, cmd.String(taskFlag))
	},
}

// Run cleans every cleanup manager referenced by task, in command order.
// All managers are run even if one fails.
func Run(ctx context.Context, w io.Writer, p *config.Project, task string) error {
	t, ok := p.Graph.Task(task)
	if !ok {
		_, err := p.Graph.Resolve(task)
		return err
	}

	var (
		errs []error
		ran  int
	)

	for _, c := range t.Commands {
		if !c.IsCleanup() {
			continue
		}

		m, ok := p.Cleaners[c.Cleanup]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", config.ErrUnknownCleanup, c.Cleanup))
			continue
		}

		ran++

		ctxlog.Info(ctx, "cleaning", "cleanup", m.Name, "root", m.Root)

		if err := m.Clean(ctx); err != nil {
			errs = append(errs, err)
			continue
		}

		fmt.Fprintf(w, "cleaned %s\n", m.Name) //nolint:errcheck
	}

	if ran == 0 && len(errs) == 0 {
		return fmt.Errorf("%w: %q", ErrNoCleanup, task)
	}

	return errors.Join(errs...)
}
