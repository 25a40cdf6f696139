// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/stoop/internal/cleanup"
	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/matt-FFFFFF/stoop/internal/taskgraph"
	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// Project is a validated task graph together with the variants and cleanup
// managers its commands refer to.
type Project struct {
	Root     string
	Graph    *taskgraph.Graph
	Resolver *variant.Resolver
	Cleaners map[string]*cleanup.Manager
}

// CleanerMap returns the cleanup managers in the form the executor accepts.
func (p *Project) CleanerMap() map[string]runner.Cleaner {
	m := make(map[string]runner.Cleaner, len(p.Cleaners))
	for k, v := range p.Cleaners {
		m[k] = v
	}

	return m
}

// CleanerNames returns the cleanup manager names in sorted order.
func (p *Project) CleanerNames() []string {
	names := make([]string, 0, len(p.Cleaners))
	for k := range p.Cleaners {
		names = append(names, k)
	}

	slices.Sort(names)

	return names
}

// Executor returns an executor for the project.
func (p *Project) Executor(opts ...runner.Option) *runner.Executor {
	base := []runner.Option{
		runner.WithCleaners(p.CleanerMap()),
		runner.WithWorkdir(p.Root),
	}

	return runner.New(p.Graph, p.Resolver, append(base, opts...)...)
}

// Build merges files into a single project rooted at root. Every problem
// found is reported, not just the first.
func Build(root string, files ...*File) (*Project, error) {
	var (
		merr       error
		toolchains []variant.Toolchain
	)

	for _, f := range files {
		for _, v := range f.Variants {
			toolchains = append(toolchains, v.Toolchain())
		}
	}

	resolver, err := variant.NewResolver(toolchains...)
	if err != nil {
		return nil, errors.Join(ErrBuildProject, err)
	}

	p := &Project{
		Root:     root,
		Graph:    taskgraph.New(),
		Resolver: resolver,
		Cleaners: make(map[string]*cleanup.Manager),
	}

	for _, f := range files {
		for _, c := range f.Cleanup {
			if _, dup := p.Cleaners[c.Name]; dup {
				merr = multierror.Append(merr, fmt.Errorf("%w: %q", ErrDuplicateCleanup, c.Name))
				continue
			}

			m, err := cleanup.New(c.Name, root, c.Targets()...)
			if err != nil {
				merr = multierror.Append(merr, err)
				continue
			}

			p.Cleaners[c.Name] = m
		}
	}

	for _, f := range files {
		for _, d := range f.Tasks {
			t, err := d.ToTask()
			if err != nil {
				merr = multierror.Append(merr, err)
				continue
			}

			if err := p.Graph.RegisterTask(t); err != nil {
				merr = multierror.Append(merr, err)
			}
		}

		for _, d := range f.Templates {
			tpl, err := d.ToTemplate()
			if err != nil {
				merr = multierror.Append(merr, err)
				continue
			}

			if err := p.Graph.RegisterTemplate(tpl, resolver); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("template %q: %w", d.Name, err))
			}
		}
	}

	if err := p.checkCleanupRefs(); err != nil {
		merr = multierror.Append(merr, err)
	}

	if err := p.Graph.Validate(); err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return nil, errors.Join(ErrBuildProject, merr)
	}

	return p, nil
}

func (p *Project) checkCleanupRefs() error {
	var merr error

	for _, name := range p.Graph.Names() {
		t, _ := p.Graph.Task(name)
		for _, c := range t.Commands {
			if !c.IsCleanup() {
				continue
			}

			if _, ok := p.Cleaners[c.Cleanup]; !ok {
				merr = multierror.Append(merr, fmt.Errorf("task %q: %w: %q", name, ErrUnknownCleanup, c.Cleanup))
			}
		}
	}

	return merr
}
