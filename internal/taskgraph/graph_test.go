// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRegister(t *testing.T, g *Graph, name string, prereqs ...string) {
	t.Helper()
	require.NoError(t, g.Register(name, prereqs, nil, nil))
}

func TestResolveDiamond(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "A", "B", "C")
	mustRegister(t, g, "B", "D")
	mustRegister(t, g, "C", "D")
	mustRegister(t, g, "D")

	order, err := g.Resolve("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A"}, order)
}

func TestResolveDeclarationOrder(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "setup")
	mustRegister(t, g, "clean")
	mustRegister(t, g, "dev", "clean", "setup")

	order, err := g.Resolve("dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"clean", "setup", "dev"}, order)

	again, err := g.Resolve("dev")
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestResolveForwardReference(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "upload", "build")
	mustRegister(t, g, "build")

	order, err := g.Resolve("upload")
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "upload"}, order)
}

func TestResolveCycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*Graph)
		root  string
		path  []string
	}{
		{
			name: "two tasks",
			setup: func(g *Graph) {
				_ = g.Register("A", []string{"B"}, nil, nil)
				_ = g.Register("B", []string{"A"}, nil, nil)
			},
			root: "A",
			path: []string{"A", "B", "A"},
		},
		{
			name: "self loop",
			setup: func(g *Graph) {
				_ = g.Register("A", []string{"A"}, nil, nil)
			},
			root: "A",
			path: []string{"A", "A"},
		},
		{
			name: "cycle below root",
			setup: func(g *Graph) {
				_ = g.Register("root", []string{"x"}, nil, nil)
				_ = g.Register("x", []string{"y"}, nil, nil)
				_ = g.Register("y", []string{"z"}, nil, nil)
				_ = g.Register("z", []string{"x"}, nil, nil)
			},
			root: "root",
			path: []string{"x", "y", "z", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := New()
			tt.setup(g)

			order, err := g.Resolve(tt.root)
			require.Error(t, err)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, ErrCycle)

			var ce *CycleError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "A", "missing")

	_, err := g.Resolve("A")
	require.ErrorIs(t, err, ErrUnknownTask)

	var ute *UnknownTaskError
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "missing", ute.Name)
	assert.Equal(t, "A", ute.RequiredBy)

	_, err = g.Resolve("nope")
	require.True(t, errors.As(err, &ute))
	assert.Equal(t, "nope", ute.Name)
	assert.Empty(t, ute.RequiredBy)
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "A")

	err := g.Register("A", nil, nil, nil)
	require.ErrorIs(t, err, ErrDuplicateTask)

	var dte *DuplicateTaskError
	require.True(t, errors.As(err, &dte))
	assert.Equal(t, "A", dte.Name)

	assert.ErrorIs(t, g.Register("", nil, nil, nil), ErrEmptyTaskName)
}

func TestRegisterStoresCopy(t *testing.T) {
	t.Parallel()

	g := New()
	prereqs := []string{"B"}
	env := map[string]string{"X": "1"}
	cmds := []Command{{Args: []string{"echo", "hi"}}}

	require.NoError(t, g.Register("A", prereqs, cmds, env))

	prereqs[0] = "changed"
	env["X"] = "changed"
	cmds[0].Args[0] = "changed"

	task, ok := g.Task("A")
	require.True(t, ok)
	assert.Equal(t, []string{"B"}, task.Prerequisites)
	assert.Equal(t, "1", task.Env["X"])
	assert.Equal(t, "echo", task.Commands[0].Args[0])

	task.Env["X"] = "mutated"
	again, _ := g.Task("A")
	assert.Equal(t, "1", again.Env["X"])
}

func TestValidate(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "ok")
	mustRegister(t, g, "A", "B")
	mustRegister(t, g, "B", "A")
	mustRegister(t, g, "C", "ghost")

	err := g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
	assert.ErrorIs(t, err, ErrUnknownTask)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))
	assert.Len(t, joined.Unwrap(), 2)

	clean := New()
	mustRegister(t, clean, "x")
	assert.NoError(t, clean.Validate())
}

func TestNames(t *testing.T) {
	t.Parallel()

	g := New()
	mustRegister(t, g, "b")
	mustRegister(t, g, "a")
	assert.Equal(t, []string{"b", "a"}, g.Names())
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Has("a"))
	assert.False(t, g.Has("c"))
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cleanup clean", Command{Cleanup: "clean"}.String())
	assert.Equal(t, "git diff", Command{Args: []string{"git", "diff"}}.String())
	assert.Equal(t, "<pip:py2> install -e .", Command{Tool: "pip", Variant: "py2", Args: []string{"install", "-e", "."}}.String())
}
