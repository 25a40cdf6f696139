// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"github.com/matt-FFFFFF/stoop/internal/cleanup"
	"github.com/matt-FFFFFF/stoop/internal/taskgraph"
	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// File is the decoded form of one task file.
type File struct {
	Variants  []VariantDefinition  `yaml:"variants,omitempty" hcl:"variant,block"`
	Cleanup   []CleanupDefinition  `yaml:"cleanup,omitempty" hcl:"cleanup,block"`
	Tasks     []TaskDefinition     `yaml:"tasks,omitempty" hcl:"task,block"`
	Templates []TemplateDefinition `yaml:"templates,omitempty" hcl:"template,block"`
}

// VariantDefinition adds or replaces a toolchain.
type VariantDefinition struct {
	Key         string `yaml:"key" hcl:"key,label"`
	Interpreter string `yaml:"interpreter" hcl:"interpreter"`
}

// CleanupDefinition declares a named cleanup manager.
type CleanupDefinition struct {
	Name  string   `yaml:"name" hcl:"name,label"`
	Paths []string `yaml:"paths,omitempty" hcl:"paths,optional"`
	Globs []string `yaml:"globs,omitempty" hcl:"globs,optional"`
	Names []string `yaml:"names,omitempty" hcl:"names,optional"`
}

// TaskDefinition declares a single task.
type TaskDefinition struct {
	Name        string              `yaml:"name" hcl:"name,label"`
	Description string              `yaml:"description,omitempty" hcl:"description,optional"`
	Deps        []string            `yaml:"deps,omitempty" hcl:"deps,optional"`
	Env         map[string]string   `yaml:"env,omitempty" hcl:"env,optional"`
	Commands    []CommandDefinition `yaml:"commands,omitempty" hcl:"command,block"`
}

// TemplateDefinition declares a task instantiated once per listed variant.
// Name, Description and Deps may contain the {variant} placeholder.
type TemplateDefinition struct {
	Name        string              `yaml:"name" hcl:"name,label"`
	DefaultName string              `yaml:"default_name,omitempty" hcl:"default_name,optional"`
	Description string              `yaml:"description,omitempty" hcl:"description,optional"`
	Deps        []string            `yaml:"deps,omitempty" hcl:"deps,optional"`
	Env         map[string]string   `yaml:"env,omitempty" hcl:"env,optional"`
	Variants    []string            `yaml:"variants" hcl:"variants"`
	Commands    []CommandDefinition `yaml:"commands,omitempty" hcl:"command,block"`
}

// CommandDefinition declares a command of a task or template.
type CommandDefinition struct {
	Args          []string          `yaml:"args,omitempty" hcl:"args,optional"`
	Tool          string            `yaml:"tool,omitempty" hcl:"tool,optional"`
	Variant       string            `yaml:"variant,omitempty" hcl:"variant,optional"`
	Dir           string            `yaml:"dir,omitempty" hcl:"dir,optional"`
	BestEffort    bool              `yaml:"best_effort,omitempty" hcl:"best_effort,optional"`
	Env           map[string]string `yaml:"env,omitempty" hcl:"env,optional"`
	ForceArgs     []string          `yaml:"force_args,omitempty" hcl:"force_args,optional"`
	PassArgs      bool              `yaml:"pass_args,omitempty" hcl:"pass_args,optional"`
	ExpandGlobs   bool              `yaml:"expand_globs,omitempty" hcl:"expand_globs,optional"`
	SkipIfMissing bool              `yaml:"skip_if_missing,omitempty" hcl:"skip_if_missing,optional"`
	Cleanup       string            `yaml:"cleanup,omitempty" hcl:"cleanup,optional"`
}

// ToCommand converts the definition into a graph command.
func (d CommandDefinition) ToCommand() (taskgraph.Command, error) {
	tool, err := variant.ParseTool(d.Tool)
	if err != nil {
		return taskgraph.Command{}, err
	}

	if d.Cleanup != "" && (len(d.Args) > 0 || tool != variant.ToolNone) {
		return taskgraph.Command{}, fmt.Errorf("%w: cleanup %q also sets args or tool", ErrInvalidCommand, d.Cleanup)
	}

	if d.Cleanup == "" && len(d.Args) == 0 && tool == variant.ToolNone {
		return taskgraph.Command{}, fmt.Errorf("%w: no args, tool or cleanup", ErrInvalidCommand)
	}

	return taskgraph.Command{
		Args:          d.Args,
		Tool:          tool,
		Variant:       d.Variant,
		Dir:           d.Dir,
		BestEffort:    d.BestEffort,
		Env:           d.Env,
		ForceArgs:     d.ForceArgs,
		PassArgs:      d.PassArgs,
		ExpandGlobs:   d.ExpandGlobs,
		SkipIfMissing: d.SkipIfMissing,
		Cleanup:       d.Cleanup,
	}.Clone(), nil
}

func toCommands(defs []CommandDefinition) ([]taskgraph.Command, error) {
	cmds := make([]taskgraph.Command, 0, len(defs))

	for i, d := range defs {
		c, err := d.ToCommand()
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}

		cmds = append(cmds, c)
	}

	return cmds, nil
}

// ToTask converts the definition into a graph task.
func (d TaskDefinition) ToTask() (taskgraph.Task, error) {
	cmds, err := toCommands(d.Commands)
	if err != nil {
		return taskgraph.Task{}, fmt.Errorf("task %q: %w", d.Name, err)
	}

	return taskgraph.Task{
		Name:          d.Name,
		Description:   d.Description,
		Prerequisites: d.Deps,
		Commands:      cmds,
		Env:           d.Env,
	}, nil
}

// ToTemplate converts the definition into a graph template.
func (d TemplateDefinition) ToTemplate() (taskgraph.Template, error) {
	cmds, err := toCommands(d.Commands)
	if err != nil {
		return taskgraph.Template{}, fmt.Errorf("template %q: %w", d.Name, err)
	}

	return taskgraph.Template{
		Name:          d.Name,
		DefaultName:   d.DefaultName,
		Description:   d.Description,
		Prerequisites: d.Deps,
		Env:           d.Env,
		Variants:      d.Variants,
		Commands:      cmds,
	}, nil
}

// Targets returns the cleanup targets in declaration order: paths, globs, then names.
func (d CleanupDefinition) Targets() []cleanup.Target {
	targets := make([]cleanup.Target, 0, len(d.Paths)+len(d.Globs)+len(d.Names))

	for _, p := range d.Paths {
		targets = append(targets, cleanup.Target{Path: p})
	}

	for _, g := range d.Globs {
		targets = append(targets, cleanup.Target{Glob: g})
	}

	for _, n := range d.Names {
		targets = append(targets, cleanup.Target{Name: n})
	}

	return targets
}

// Toolchain converts the definition into a toolchain.
func (d VariantDefinition) Toolchain() variant.Toolchain {
	return variant.Toolchain{Key: d.Key, Interpreter: d.Interpreter}
}
