// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package debug implements the stoop debug command.
package debug

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/stoop/internal/config"
	"github.com/matt-FFFFFF/stoop/internal/envscope"
	"github.com/urfave/cli/v3"
)

const fileFlag = "file"

// ErrNotHCL is returned when the task file is not an HCL file.
var ErrNotHCL = errors.New("debug mode needs an .hcl task file")

// DebugCmd evaluates HCL expressions interactively.
var DebugCmd = &cli.Command{
	Name:  "debug",
	Usage: "Evaluate HCL expressions against a task file",
	Description: `Start an interactive session that evaluates HCL expressions in the context
of an HCL task file: variant.<key>.interpreter, env.<NAME> and the built-in functions.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      fileFlag,
			Aliases:   []string{"f"},
			Usage:     "URL of the HCL task file",
			Required:  true,
			TakesFile: true,
			OnlyOnce:  true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		location := cmd.String(fileFlag)
		if !config.IsHCL(location) {
			return ErrNotHCL
		}

		data, err := config.ReadSource(ctx, location)
		if err != nil {
			return err
		}

		evalCtx, err := config.HCLEvalContext(location, data, envscope.FromEnviron(os.Environ()))
		if err != nil {
			return err
		}

		return config.EnterDebugMode(ctx, evalCtx, cmd.Writer)
	},
}
