// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"strings"

	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// Placeholder is replaced by the variant key in template names and prerequisites.
const Placeholder = "{variant}"

// VariantLookup resolves variant keys. *variant.Resolver satisfies it.
type VariantLookup interface {
	Resolve(key string) (variant.Toolchain, error)
}

// Template describes a task shape that is instantiated once per variant.
type Template struct {
	// Name may contain Placeholder.
	Name string
	// DefaultName, when set, names the instance for the default variant.
	DefaultName   string
	Description   string
	Prerequisites []string
	Env           map[string]string
	Variants      []string
	Commands      []Command
}

// Expand substitutes key into s. For the default variant a "-{variant}" suffix
// is dropped, so "setup-{variant}" becomes "setup".
func Expand(s, key string) string {
	if key == variant.DefaultKey {
		s = strings.ReplaceAll(s, "-"+Placeholder, "")
		s = strings.ReplaceAll(s, Placeholder, key)

		return s
	}

	return strings.ReplaceAll(s, Placeholder, key)
}

// Instantiate returns one task per variant of the template. Every variant is
// checked with lookup before any task is produced.
func (tpl Template) Instantiate(lookup VariantLookup) ([]Task, error) {
	for _, key := range tpl.Variants {
		if _, err := lookup.Resolve(key); err != nil {
			return nil, err
		}
	}

	tasks := make([]Task, 0, len(tpl.Variants))

	for _, key := range tpl.Variants {
		name := Expand(tpl.Name, key)
		if key == variant.DefaultKey && tpl.DefaultName != "" {
			name = tpl.DefaultName
		}

		t := Task{
			Name:        name,
			Description: Expand(tpl.Description, key),
			Env:         tpl.Env,
		}

		for _, p := range tpl.Prerequisites {
			t.Prerequisites = append(t.Prerequisites, Expand(p, key))
		}

		for _, c := range tpl.Commands {
			if c.Variant == "" {
				c.Variant = key
			}

			t.Commands = append(t.Commands, c)
		}

		tasks = append(tasks, t.Clone())
	}

	return tasks, nil
}

// RegisterTemplate instantiates tpl and registers every instance. Nothing is
// registered if any variant is unknown or any instance name is taken.
func (g *Graph) RegisterTemplate(tpl Template, lookup VariantLookup) error {
	tasks, err := tpl.Instantiate(lookup)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(tasks))

	for _, t := range tasks {
		if t.Name == "" {
			return ErrEmptyTaskName
		}

		if _, dup := seen[t.Name]; dup || g.Has(t.Name) {
			return &DuplicateTaskError{Name: t.Name}
		}

		seen[t.Name] = struct{}{}
	}

	for _, t := range tasks {
		if err := g.RegisterTask(t); err != nil {
			return err
		}
	}

	return nil
}
