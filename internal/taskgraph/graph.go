// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"slices"
)

// Graph is a registry of tasks. It is not safe for concurrent registration.
type Graph struct {
	tasks map[string]Task
	order []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		tasks: make(map[string]Task),
	}
}

// Register adds a task. Prerequisites may name tasks that are registered later;
// they are checked by Resolve and Validate.
func (g *Graph) Register(name string, prerequisites []string, commands []Command, env map[string]string) error {
	return g.RegisterTask(Task{
		Name:          name,
		Prerequisites: prerequisites,
		Commands:      commands,
		Env:           env,
	})
}

// RegisterTask adds a copy of t to the graph.
func (g *Graph) RegisterTask(t Task) error {
	if t.Name == "" {
		return ErrEmptyTaskName
	}

	if _, ok := g.tasks[t.Name]; ok {
		return &DuplicateTaskError{Name: t.Name}
	}

	g.tasks[t.Name] = t.Clone()
	g.order = append(g.order, t.Name)

	return nil
}

// Task returns a copy of the named task.
func (g *Graph) Task(name string) (Task, bool) {
	t, ok := g.tasks[name]
	if !ok {
		return Task{}, false
	}

	return t.Clone(), true
}

// Has reports whether name is registered.
func (g *Graph) Has(name string) bool {
	_, ok := g.tasks[name]
	return ok
}

// Names returns task names in registration order.
func (g *Graph) Names() []string {
	return slices.Clone(g.order)
}

// Len returns the number of registered tasks.
func (g *Graph) Len() int {
	return len(g.order)
}
