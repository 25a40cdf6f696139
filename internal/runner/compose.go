// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/stoop/internal/envscope"
	"github.com/matt-FFFFFF/stoop/internal/taskgraph"
	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// Step is one composed command of a planned run.
type Step struct {
	Task       string
	Command    string
	Argv       []string
	Dir        string
	Env        map[string]string
	Cleanup    string
	BestEffort bool
}

// String renders the step as a shell-like line.
func (s Step) String() string {
	if s.Cleanup != "" {
		return "cleanup " + s.Cleanup
	}

	quoted := make([]string, len(s.Argv))
	for i, a := range s.Argv {
		if a == "" || strings.ContainsAny(a, " \t\"'$") {
			a = fmt.Sprintf("%q", a)
		}

		quoted[i] = a
	}

	return strings.Join(quoted, " ")
}

func (e *Executor) variantKey(c taskgraph.Command) string {
	switch {
	case c.Variant != "":
		return c.Variant
	case e.defaultVariant != "":
		return e.defaultVariant
	default:
		return variant.DefaultKey
	}
}

// commandEnv layers the command overrides and the run mode on the task environment.
func (e *Executor) commandEnv(taskEnv map[string]string, c taskgraph.Command) map[string]string {
	env := envscope.Layer(taskEnv, c.Env)
	env[EnvMode] = e.mode.String()

	return env
}

// compose builds the argument vector for c. passArgs is only appended when
// the command asks for it.
func (e *Executor) compose(task taskgraph.Task, c taskgraph.Command, taskEnv map[string]string, workdir string, passArgs []string) (Step, error) {
	st := Step{
		Task:       task.Name,
		Command:    c.String(),
		Cleanup:    c.Cleanup,
		BestEffort: c.BestEffort,
	}

	if c.IsCleanup() {
		return st, nil
	}

	prefix, err := e.toolArgv(c)
	if err != nil {
		return st, err
	}

	argv := slices.Concat(prefix, c.Args)
	if len(argv) == 0 || argv[0] == "" {
		return st, fmt.Errorf("%w: task %q", ErrEmptyCommand, task.Name)
	}

	if e.mode == ModeForce {
		argv = append(argv, c.ForceArgs...)
	}

	if c.PassArgs {
		argv = append(argv, passArgs...)
	}

	st.Dir = workdir
	if c.Dir != "" {
		st.Dir = c.Dir
		if !filepath.IsAbs(st.Dir) {
			st.Dir = filepath.Join(workdir, filepath.FromSlash(c.Dir))
		}
	}

	if c.ExpandGlobs {
		argv = append(argv[:1:1], expandGlobs(st.Dir, argv[1:])...)
	}

	st.Argv = argv
	st.Env = e.commandEnv(taskEnv, c)

	return st, nil
}

func (e *Executor) toolArgv(c taskgraph.Command) ([]string, error) {
	if c.Tool == variant.ToolNone {
		return nil, nil
	}

	tc, err := e.resolver.Resolve(e.variantKey(c))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return tc.Argv(c.Tool) //nolint:wrapcheck
}

// expandGlobs expands arguments containing glob metacharacters relative to
// dir. An argument with no matches is kept as written.
func expandGlobs(dir string, args []string) []string {
	out := make([]string, 0, len(args))

	for _, a := range args {
		if !strings.ContainsAny(a, "*?[") {
			out = append(out, a)
			continue
		}

		pattern := a
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, filepath.FromSlash(a))
		}

		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			out = append(out, a)
			continue
		}

		for _, m := range matches {
			if !filepath.IsAbs(a) {
				if rel, err := filepath.Rel(dir, m); err == nil {
					m = rel
				}
			}

			out = append(out, m)
		}
	}

	return out
}
