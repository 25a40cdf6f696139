// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"maps"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// Command describes a single invocation belonging to a task.
type Command struct {
	// Args is the argument list. When Tool is empty, Args[0] is the program.
	Args []string
	// Tool binds the command to a toolchain role of its variant.
	Tool variant.Tool
	// Variant is the variant key. Empty means the run default.
	Variant string
	// Dir is the working directory relative to the workspace root.
	Dir string
	// BestEffort downgrades a nonzero exit to a warning.
	BestEffort bool
	// Env is layered on top of the task environment for this command only.
	Env map[string]string
	// ForceArgs are appended when the run is in force mode.
	ForceArgs []string
	// PassArgs appends the caller's pass-through arguments when set on a
	// command of the root task.
	PassArgs bool
	// ExpandGlobs expands glob arguments relative to Dir.
	ExpandGlobs bool
	// SkipIfMissing skips the command with a warning when the program cannot
	// be found.
	SkipIfMissing bool
	// Cleanup names a cleanup manager to invoke instead of a process.
	Cleanup string
}

// IsCleanup reports whether the command delegates to a cleanup manager.
func (c Command) IsCleanup() bool {
	return c.Cleanup != ""
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	if c.IsCleanup() {
		return "cleanup " + c.Cleanup
	}

	var sb strings.Builder

	if c.Tool != variant.ToolNone {
		sb.WriteString("<")
		sb.WriteString(string(c.Tool))

		if c.Variant != "" {
			sb.WriteString(":")
			sb.WriteString(c.Variant)
		}

		sb.WriteString(">")

		if len(c.Args) > 0 {
			sb.WriteString(" ")
		}
	}

	sb.WriteString(strings.Join(c.Args, " "))

	return sb.String()
}

// Clone returns a deep copy of the command.
func (c Command) Clone() Command {
	c.Args = slices.Clone(c.Args)
	c.ForceArgs = slices.Clone(c.ForceArgs)
	c.Env = maps.Clone(c.Env)

	return c
}

// Task is a named unit of work.
type Task struct {
	Name          string
	Description   string
	Prerequisites []string
	Commands      []Command
	Env           map[string]string
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.Prerequisites = slices.Clone(t.Prerequisites)
	t.Env = maps.Clone(t.Env)

	if t.Commands != nil {
		cmds := make([]Command, len(t.Commands))
		for i, c := range t.Commands {
			cmds[i] = c.Clone()
		}

		t.Commands = cmds
	}

	return t
}
