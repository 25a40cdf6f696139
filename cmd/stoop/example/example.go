// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package example implements the stoop example command.
package example

import (
	"context"
	"errors"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/stoop/internal/catalog"
	"github.com/urfave/cli/v3"
)

// ErrMarshal is returned when the catalog cannot be rendered.
var ErrMarshal = errors.New("failed to render example")

// ExampleCmd prints the built-in catalog as a YAML task file.
var ExampleCmd = &cli.Command{
	Name:        "example",
	Usage:       "Print the built-in tasks as a YAML task file",
	Description: "The output can be edited and passed back with `stoop run -f FILE`.",
	Action: func(_ context.Context, cmd *cli.Command) error {
		data, err := yaml.Marshal(catalog.File())
		if err != nil {
			return errors.Join(ErrMarshal, err)
		}

		_, err = cmd.Writer.Write(data)

		return err
	},
}
