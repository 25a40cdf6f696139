// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/ws"

// errorFS fails removal of the paths in deny with os.ErrPermission.
type errorFS struct {
	afero.Fs
	deny map[string]bool
}

func (e *errorFS) Remove(name string) error {
	if e.deny[name] {
		return os.ErrPermission
	}

	return e.Fs.Remove(name)
}

func (e *errorFS) RemoveAll(path string) error {
	if e.deny[path] {
		return os.ErrPermission
	}

	return e.Fs.RemoveAll(path)
}

func seed(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()

	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}
}

func listFiles(t *testing.T, fs afero.Fs) []string {
	t.Helper()

	var out []string

	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			out = append(out, filepath.ToSlash(rel))
		}

		return nil
	})
	sort.Strings(out)

	return out
}

func newMemManager(t *testing.T, fs afero.Fs, targets ...Target) *Manager {
	t.Helper()

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	m, err := New("clean", root, targets...)
	require.NoError(t, err)

	return m
}

func TestCleanRemovesTargets(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"dist/pkg.whl",
		"build/lib/a.py",
		"coconut/tests/dest/out.py",
		"coconut_develop.egg-info/PKG-INFO",
		"coconut/__pycache__/x.cpython.pyc",
		"coconut/compiler/util.pyc",
		"coconut/compiler/util.py",
		"index.rst",
		"setup.py",
	)

	m := newMemManager(t, fs,
		Target{Path: "dist"},
		Target{Path: "build"},
		Target{Path: "coconut/tests/dest"},
		Target{Path: "index.rst"},
		Target{Glob: "*.egg-info"},
		Target{Name: "*.pyc"},
		Target{Name: "__pycache__"},
	)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	require.NoError(t, m.Clean(ctx))

	assert.Equal(t, []string{"coconut/compiler/util.py", "setup.py"}, listFiles(t, fs))

	exists, err := afero.DirExists(fs, filepath.Join(root, "coconut", "__pycache__"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCleanIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "dist/a", "keep.txt", "x/y.pyc")

	m := newMemManager(t, fs, Target{Path: "dist"}, Target{Name: "*.pyc"}, Target{Glob: "*.egg-info"})
	ctx := context.Background()

	require.NoError(t, m.Clean(ctx))
	first := listFiles(t, fs)

	require.NoError(t, m.Clean(ctx))
	assert.Equal(t, first, listFiles(t, fs))
	assert.Equal(t, []string{"keep.txt"}, first)
}

func TestCleanFreshCheckout(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := newMemManager(t, fs, Target{Path: "dist"}, Target{Path: "a/b/c"}, Target{Name: "*.pyc"}, Target{Glob: "*.log"})

	assert.NoError(t, m.Clean(context.Background()))
}

func TestCleanTargetBelowFile(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		seed(t, fs, "build")

		m := newMemManager(t, fs, Target{Path: "build/lib"}, Target{Path: "build/lib/x.py"})
		require.NoError(t, m.Clean(context.Background()))
		assert.Equal(t, []string{"build"}, listFiles(t, fs))
	})

	t.Run("os", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "build"), []byte("x"), 0o644))

		stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewOsFs() })
		defer stubs.Reset()

		m, err := New("clean", dir, Target{Path: "build/lib"})
		require.NoError(t, err)

		require.NoError(t, m.Clean(context.Background()))
		require.NoError(t, m.Clean(context.Background()))

		_, err = os.Stat(filepath.Join(dir, "build"))
		assert.NoError(t, err)
	})
}

func TestCleanFilesystemError(t *testing.T) {
	base := afero.NewMemMapFs()
	seed(t, base, "dist/a", "build/b")

	fs := &errorFS{Fs: base, deny: map[string]bool{filepath.Join(root, "dist"): true}}
	m := newMemManager(t, fs, Target{Path: "dist"}, Target{Path: "build"})

	err := m.Clean(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFilesystem)
	assert.ErrorIs(t, err, os.ErrPermission)

	var fse *FilesystemError
	require.True(t, errors.As(err, &fse))
	assert.Equal(t, "remove", fse.Op)
	assert.Equal(t, filepath.Join(root, "dist"), fse.Path)

	assert.Equal(t, []string{"dist/a"}, listFiles(t, base))
}

func TestCleanAggregatesErrors(t *testing.T) {
	base := afero.NewMemMapFs()
	seed(t, base, "dist/a", "build/b")

	fs := &errorFS{Fs: base, deny: map[string]bool{
		filepath.Join(root, "dist"):  true,
		filepath.Join(root, "build"): true,
	}}
	m := newMemManager(t, fs, Target{Path: "dist"}, Target{Path: "build"})

	err := m.Clean(context.Background())

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, ErrFilesystem)
}

func TestCleanCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "dist/a")

	m := newMemManager(t, fs, Target{Path: "dist"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Clean(ctx), context.Canceled)
	assert.Equal(t, []string{"dist/a"}, listFiles(t, fs))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   error
	}{
		{"absolute path", Target{Path: "/etc"}, ErrOutsideRoot},
		{"parent path", Target{Path: "../sibling"}, ErrOutsideRoot},
		{"sneaky parent", Target{Path: "a/../../b"}, ErrOutsideRoot},
		{"root itself", Target{Path: "."}, ErrOutsideRoot},
		{"absolute glob", Target{Glob: "/tmp/*"}, ErrOutsideRoot},
		{"parent glob", Target{Glob: "../*.txt"}, ErrOutsideRoot},
		{"bad glob", Target{Glob: "[a-"}, ErrInvalidTarget},
		{"name with separator", Target{Name: "a/b"}, ErrInvalidTarget},
		{"empty", Target{}, ErrInvalidTarget},
		{"two fields", Target{Path: "a", Name: "b"}, ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("x", root, tt.target)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := New("x", "", Target{Path: "a"})
	assert.ErrorIs(t, err, ErrNoRoot)

	m, err := New("ok", root, Target{Path: "a/./b"}, Target{Glob: "*.egg-info"}, Target{Name: "__pycache__"})
	require.NoError(t, err)
	assert.Len(t, m.Targets, 3)
}

func TestCleanDoesNotFollowSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	outside := t.TempDir()
	ws := t.TempDir()

	precious := filepath.Join(outside, "precious.pyc")
	require.NoError(t, os.WriteFile(precious, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "keep.txt"), []byte("x"), 0o644))

	require.NoError(t, os.Symlink(outside, filepath.Join(ws, "linked")))
	require.NoError(t, os.Symlink(outside, filepath.Join(ws, "dist")))

	m, err := New("clean", ws, Target{Path: "dist"}, Target{Path: "linked/keep.txt"}, Target{Name: "*.pyc"})
	require.NoError(t, err)
	require.NoError(t, m.Clean(context.Background()))

	_, err = os.Lstat(filepath.Join(ws, "dist"))
	assert.ErrorIs(t, err, os.ErrNotExist, "symlink itself is removed")

	assert.FileExists(t, precious)
	assert.FileExists(t, filepath.Join(outside, "keep.txt"))
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "path:dist", Target{Path: "dist"}.String())
	assert.Equal(t, "glob:*.egg-info", Target{Glob: "*.egg-info"}.String())
	assert.Equal(t, "name:*.pyc", Target{Name: "*.pyc"}.String())
}

func TestFilesystemErrorMessage(t *testing.T) {
	err := &FilesystemError{Op: "remove", Path: "/ws/dist", Err: os.ErrPermission}
	assert.Equal(t, "filesystem error: remove /ws/dist: permission denied", err.Error())
}
