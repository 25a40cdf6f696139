// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package project loads the task project shared by the stoop subcommands.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matt-FFFFFF/stoop/internal/catalog"
	"github.com/matt-FFFFFF/stoop/internal/config"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/matt-FFFFFF/stoop/internal/envscope"
	"github.com/urfave/cli/v3"
)

const (
	// FileFlag names the repeatable task file flag.
	FileFlag = "file"
	// WorkdirFlag names the workspace root flag.
	WorkdirFlag = "workdir"
)

// ErrLoadProject is returned when the project cannot be loaded.
var ErrLoadProject = errors.New("failed to load project")

// Flags returns fresh instances of the flags Load reads.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    FileFlag,
			Aliases: []string{"f"},
			Usage: "URL of a YAML or HCL task file. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
				"Specify multiple times to merge files. Defaults to the built-in catalog.",
		},
		&cli.StringFlag{
			Name:      WorkdirFlag,
			Aliases:   []string{"C"},
			Usage:     "Workspace root that commands run in and cleanup is confined to",
			TakesFile: true,
			OnlyOnce:  true,
		},
	}
}

// Workdir returns the absolute workspace root.
func Workdir(cmd *cli.Command) (string, error) {
	dir := cmd.String(WorkdirFlag)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Join(ErrLoadProject, err)
		}

		return wd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Join(ErrLoadProject, err)
	}

	return abs, nil
}

// Load builds the project from the task files given on cmd, or from the
// built-in catalog when there are none.
func Load(ctx context.Context, cmd *cli.Command) (*config.Project, error) {
	root, err := Workdir(cmd)
	if err != nil {
		return nil, err
	}

	files := cmd.StringSlice(FileFlag)
	if len(files) == 0 {
		ctxlog.Debug(ctx, "using built-in catalog", "root", root)

		p, err := catalog.New(root)
		if err != nil {
			return nil, errors.Join(ErrLoadProject, err)
		}

		return p, nil
	}

	env := envscope.FromEnviron(os.Environ())
	defs := make([]*config.File, 0, len(files))

	for _, f := range files {
		def, err := config.Load(ctx, f, env)
		if err != nil {
			return nil, errors.Join(ErrLoadProject, err)
		}

		defs = append(defs, def)
	}

	p, err := config.Build(root, defs...)
	if err != nil {
		return nil, fmt.Errorf("%w from %v: %w", ErrLoadProject, files, err)
	}

	return p, nil
}
