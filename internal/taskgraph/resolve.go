// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"errors"
	"slices"
	"strings"
)

type mark uint8

const (
	unvisited mark = iota
	inProgress
	done
)

type resolver struct {
	g     *Graph
	marks map[string]mark
	stack []string
	order []string
}

// Resolve returns the names of root and all of its transitive prerequisites,
// each exactly once, with every prerequisite before the tasks that need it.
// Independent prerequisites appear in the order they were declared.
func (g *Graph) Resolve(root string) ([]string, error) {
	r := &resolver{
		g:     g,
		marks: make(map[string]mark, len(g.tasks)),
	}

	if err := r.visit(root, ""); err != nil {
		return nil, err
	}

	return r.order, nil
}

func (r *resolver) visit(name, requiredBy string) error {
	switch r.marks[name] {
	case done:
		return nil
	case inProgress:
		start := slices.Index(r.stack, name)
		path := append(slices.Clone(r.stack[start:]), name)

		return &CycleError{Path: path}
	}

	t, ok := r.g.tasks[name]
	if !ok {
		return &UnknownTaskError{Name: name, RequiredBy: requiredBy}
	}

	r.marks[name] = inProgress
	r.stack = append(r.stack, name)

	for _, p := range t.Prerequisites {
		if err := r.visit(p, name); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.marks[name] = done
	r.order = append(r.order, name)

	return nil
}

// Validate resolves every registered task and returns all distinct problems.
// A cycle is reported once even when several roots reach it.
func (g *Graph) Validate() error {
	var (
		errs []error
		seen = make(map[string]struct{})
	)

	for _, name := range g.order {
		if _, err := g.Resolve(name); err != nil {
			key := problemKey(err)
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// problemKey identifies a cycle by its member set, so that A -> B -> A and
// B -> A -> B are the same problem.
func problemKey(err error) string {
	var ce *CycleError
	if !errors.As(err, &ce) {
		return err.Error()
	}

	members := slices.Clone(ce.Path[:len(ce.Path)-1])
	slices.Sort(members)

	return "cycle:" + strings.Join(members, ",")
}
