// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/spf13/afero"
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load reads and decodes the task file at location. Paths that exist on the
// local filesystem are read directly, anything else is fetched with go-getter.
func Load(ctx context.Context, location string, env map[string]string) (*File, error) {
	data, err := ReadSource(ctx, location)
	if err != nil {
		return nil, err
	}

	f, err := Parse(location, data, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}

	return f, nil
}

// ReadSource returns the raw bytes of the task file at location.
func ReadSource(ctx context.Context, location string) ([]byte, error) {
	fs := FsFactory()

	if ok, _ := afero.Exists(fs, location); ok {
		ctxlog.Debug(ctx, "reading local task file", "path", location)

		data, err := afero.ReadFile(fs, location)
		if err != nil {
			return nil, errors.Join(ErrGetTaskFile, err)
		}

		return data, nil
	}

	ctxlog.Debug(ctx, "fetching task file", "url", location)

	return Fetch(ctx, location)
}
