// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/spf13/afero"
)

// FsFactory returns the filesystem used by new managers.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Target is one deletion target. Exactly one field must be set.
type Target struct {
	// Path is a file or directory relative to the root, removed recursively.
	Path string `yaml:"path,omitempty"`
	// Glob is a pattern relative to the root, e.g. "*.egg-info".
	Glob string `yaml:"glob,omitempty"`
	// Name is a base name pattern matched anywhere below the root, e.g. "__pycache__".
	Name string `yaml:"name,omitempty"`
}

// String renders the target for logs.
func (t Target) String() string {
	switch {
	case t.Path != "":
		return "path:" + t.Path
	case t.Glob != "":
		return "glob:" + t.Glob
	default:
		return "name:" + t.Name
	}
}

// Manager deletes its targets below Root.
type Manager struct {
	Name    string
	Root    string
	Targets []Target
	fs      afero.Fs
}

// New validates targets and returns a manager bound to the filesystem from FsFactory.
func New(name, root string, targets ...Target) (*Manager, error) {
	if root == "" {
		return nil, ErrNoRoot
	}

	for _, t := range targets {
		if err := validate(t); err != nil {
			return nil, fmt.Errorf("cleanup %q: %w", name, err)
		}
	}

	return &Manager{
		Name:    name,
		Root:    filepath.Clean(root),
		Targets: append([]Target(nil), targets...),
		fs:      FsFactory(),
	}, nil
}

func validate(t Target) error {
	set := 0

	for _, v := range []string{t.Path, t.Glob, t.Name} {
		if v != "" {
			set++
		}
	}

	if set != 1 {
		return fmt.Errorf("%w: %+v", ErrInvalidTarget, t)
	}

	switch {
	case t.Name != "":
		if strings.ContainsAny(t.Name, `/\`) {
			return fmt.Errorf("%w: name %q must not contain a separator", ErrInvalidTarget, t.Name)
		}

		if _, err := filepath.Match(t.Name, ""); err != nil {
			return fmt.Errorf("%w: name %q: %w", ErrInvalidTarget, t.Name, err)
		}

		return nil
	case t.Glob != "":
		if _, err := filepath.Match(t.Glob, ""); err != nil {
			return fmt.Errorf("%w: glob %q: %w", ErrInvalidTarget, t.Glob, err)
		}

		return checkInside(t.Glob)
	default:
		return checkInside(t.Path)
	}
}

func checkInside(p string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return fmt.Errorf("%w: %q is absolute", ErrOutsideRoot, p)
	}

	c := filepath.Clean(filepath.FromSlash(p))
	if c == "." || c == ".." || strings.HasPrefix(c, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrOutsideRoot, p)
	}

	return nil
}

// Clean removes every target. Missing paths are ignored. All genuine failures
// are returned; a single failure is returned as a *FilesystemError, several
// are aggregated in a *multierror.Error.
func (m *Manager) Clean(ctx context.Context) error {
	var result *multierror.Error

	for _, t := range m.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		ctxlog.Debug(ctx, "cleanup", "manager", m.Name, "target", t.String())

		var errs []error

		switch {
		case t.Path != "":
			errs = m.removePath(ctx, filepath.Join(m.Root, filepath.FromSlash(t.Path)))
		case t.Glob != "":
			errs = m.removeGlob(ctx, t.Glob)
		case t.Name != "":
			errs = m.removeNamed(ctx, t.Name)
		}

		result = multierror.Append(result, errs...)
	}

	if result == nil || len(result.Errors) == 0 {
		return nil
	}

	if len(result.Errors) == 1 {
		return result.Errors[0]
	}

	return result.ErrorOrNil()
}

func (m *Manager) removeGlob(ctx context.Context, pattern string) []error {
	matches, err := afero.Glob(m.fs, filepath.Join(m.Root, filepath.FromSlash(pattern)))
	if err != nil {
		return []error{&FilesystemError{Op: "glob", Path: pattern, Err: err}}
	}

	var errs []error

	for _, p := range matches {
		errs = append(errs, m.removePath(ctx, p)...)
	}

	return errs
}

func (m *Manager) removeNamed(ctx context.Context, pattern string) []error {
	var (
		errs    []error
		matched []string
	)

	_ = afero.Walk(m.fs, m.Root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, &FilesystemError{Op: "walk", Path: path, Err: err})
			}

			return nil
		}

		if path == m.Root {
			return nil
		}

		if ok, _ := filepath.Match(pattern, info.Name()); !ok {
			return nil
		}

		matched = append(matched, path)

		if info.IsDir() {
			return filepath.SkipDir
		}

		return nil
	})

	for _, p := range matched {
		errs = append(errs, m.removePath(ctx, p)...)
	}

	return errs
}

// removePath deletes full, which must be below the root. Parents are checked
// so that a symlinked directory is never descended into.
func (m *Manager) removePath(ctx context.Context, full string) []error {
	rel, err := filepath.Rel(m.Root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return []error{&FilesystemError{Op: "remove", Path: full, Err: ErrOutsideRoot}}
	}

	parts := strings.Split(rel, string(filepath.Separator))
	parent := m.Root

	for _, part := range parts[:len(parts)-1] {
		parent = filepath.Join(parent, part)

		info, err := lstat(m.fs, parent)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil:
			return []error{&FilesystemError{Op: "lstat", Path: parent, Err: err}}
		case info.Mode()&os.ModeSymlink != 0:
			ctxlog.Warn(ctx, "cleanup: not following symlink", "manager", m.Name, "path", parent)
			return nil
		case !info.IsDir():
			// nothing can exist below a file
			return nil
		}
	}

	info, err := lstat(m.fs, full)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return []error{&FilesystemError{Op: "lstat", Path: full, Err: err}}
	}

	if info.IsDir() {
		err = m.fs.RemoveAll(full)
	} else {
		err = m.fs.Remove(full)
	}

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return []error{&FilesystemError{Op: "remove", Path: full, Err: err}}
	}

	ctxlog.Debug(ctx, "cleanup: removed", "manager", m.Name, "path", full)

	return nil
}

func lstat(afs afero.Fs, name string) (fs.FileInfo, error) {
	if l, ok := afs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err //nolint:wrapcheck
	}

	return afs.Stat(name) //nolint:wrapcheck
}
