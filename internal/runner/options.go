// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/stoop/internal/progress"
)

// EnvMode is exported into every command's environment with the run mode.
const EnvMode = "STOOP_MODE"

// Mode tells commands whether to regenerate everything or only what changed.
// The executor does not interpret it beyond appending ForceArgs and exporting EnvMode.
type Mode int

const (
	// ModeIncremental is the default.
	ModeIncremental Mode = iota
	// ModeForce asks tools to regenerate all derived artifacts.
	ModeForce
)

func (m Mode) String() string {
	if m == ModeForce {
		return "force"
	}

	return "incremental"
}

// ParseMode converts "force" or "incremental" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "incremental":
		return ModeIncremental, nil
	case "force":
		return ModeForce, nil
	default:
		return ModeIncremental, fmt.Errorf("unknown mode %q", s)
	}
}

// Option configures an Executor.
type Option func(*Executor)

// WithProcessRunner replaces the process runner, mainly for tests.
func WithProcessRunner(p ProcessRunner) Option {
	return func(e *Executor) {
		e.proc = p
	}
}

// WithCleaners sets the cleanup managers that cleanup commands refer to by name.
func WithCleaners(c map[string]Cleaner) Option {
	return func(e *Executor) {
		e.cleaners = c
	}
}

// WithMode sets the run mode.
func WithMode(m Mode) Option {
	return func(e *Executor) {
		e.mode = m
	}
}

// WithDefaultVariant sets the variant used by commands that do not name one.
func WithDefaultVariant(key string) Option {
	return func(e *Executor) {
		e.defaultVariant = key
	}
}

// WithReporter sets the progress reporter. The executor never closes it.
func WithReporter(r progress.Reporter) Option {
	return func(e *Executor) {
		e.reporter = r
	}
}

// WithEnviron sets the inherited process environment.
func WithEnviron(env map[string]string) Option {
	return func(e *Executor) {
		e.environ = env
	}
}

// WithWorkdir sets the workspace root that command directories are relative to.
func WithWorkdir(dir string) Option {
	return func(e *Executor) {
		e.workdir = dir
	}
}

// WithOutput sets where command output is streamed.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdout = stdout
		e.stderr = stderr
	}
}
