// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the stoop show command.
package show

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/urfave/cli/v3"
)

const (
	fileArg = "file"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrWriteResults is returned when the report cannot be written.
	ErrWriteResults = errors.New("failed to write results")
)

// ShowCmd prints a report saved with stoop run --out.
var ShowCmd = &cli.Command{
	Name:        "show",
	Usage:       "Show a previously saved run report",
	Description: "Show a run report saved with `stoop run --out FILE`.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		file, err := os.Open(cmd.StringArg(fileArg))
		if err != nil {
			return errors.Join(ErrReadFile, err)
		}
		defer file.Close() //nolint:errcheck

		report, err := runner.ReadBinary(file)
		if err != nil {
			return err
		}

		if err := report.WriteText(cmd.Writer); err != nil {
			return errors.Join(ErrWriteResults, err)
		}

		return nil
	},
}
