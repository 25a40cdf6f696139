// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the stoop list command.
package list

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matt-FFFFFF/stoop/cmd/stoop/project"
	"github.com/matt-FFFFFF/stoop/internal/config"
	"github.com/urfave/cli/v3"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// ListCmd lists the registered tasks.
var ListCmd = &cli.Command{
	Name:  "list",
	Usage: "List the registered tasks",
	Flags: project.Flags(),
	Action: func(ctx context.Context, cmd *cli.Command) error {
		p, err := project.Load(ctx, cmd)
		if err != nil {
			return err
		}

		return Write(cmd.Writer, p)
	},
}

// Write renders the tasks of p as a table in registration order.
func Write(w io.Writer, p *config.Project) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TASK", "DEPENDS ON", "DESCRIPTION").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	for _, name := range p.Graph.Names() {
		task, _ := p.Graph.Task(name)
		t.Row(name, strings.Join(task.Prerequisites, ", "), task.Description)
	}

	_, err := fmt.Fprintln(w, t.Render())

	return err
}
