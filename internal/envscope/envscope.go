// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package envscope composes the environment seen by a task's commands.
//
// Overrides are scoped to one task. Nothing here touches the real process
// environment.
package envscope

import (
	"maps"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/stoop/internal/taskgraph"
)

// Effective returns a new map holding process with the task's own overrides
// applied on top. Neither input is modified.
func Effective(task taskgraph.Task, process map[string]string) map[string]string {
	return Layer(process, task.Env)
}

// Layer returns a new map holding base with overrides applied on top.
func Layer(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	maps.Copy(out, base)
	maps.Copy(out, overrides)

	return out
}

// FromEnviron converts KEY=VALUE pairs, as returned by os.Environ, into a map.
// Entries without '=' are ignored. Later entries win.
func FromEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		out[k] = v
	}

	return out
}

// ToEnviron converts env into KEY=VALUE pairs sorted by key.
func ToEnviron(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}

	return out
}
