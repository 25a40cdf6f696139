// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package catalog holds the built-in lifecycle tasks used when no task file
// is given.
package catalog

import (
	"github.com/matt-FFFFFF/stoop/internal/config"
)

// Environment variables set by catalog tasks.
const (
	EnvPurePython = "COCONUT_PURE_PYTHON"
	EnvUseColor   = "COCONUT_USE_COLOR"
)

var allVariants = []string{"default", "py2", "py3", "pypy", "pypy3"}

var testArgs = []string{"./coconut/tests", "--strict", "--line-numbers", "--keep-lines"}

var forceArgs = []string{"--force"}

// File returns the built-in task definitions. Each call returns a fresh value.
func File() *config.File {
	return &config.File{
		Cleanup:   cleanups(),
		Tasks:     tasks(),
		Templates: templates(),
	}
}

// New builds the catalog into a project rooted at root.
func New(root string) (*config.Project, error) {
	return config.Build(root, File())
}

func cleanups() []config.CleanupDefinition {
	return []config.CleanupDefinition{
		{
			Name: "clean",
			Paths: []string{
				"docs", "dist", "build", "coconut/tests/dest",
				"bbopt", "pyprover", "pyston", "coconut-prelude",
				"index.rst", "vprof.json", "profile.log", ".mypy_cache",
			},
			Names: []string{"*.pyc", "__pycache__"},
		},
		{
			Name:  "clean-index",
			Paths: []string{"index.rst"},
		},
		{
			Name:  "wipe",
			Paths: []string{"coconut/tests/dest", "coconut/icoconut/coconut", "coconut/icoconut/coconut_py", "coconut/icoconut/coconut_py2", "coconut/icoconut/coconut_py3"},
			Globs: []string{"*.egg-info"},
		},
	}
}

func templates() []config.TemplateDefinition {
	return []config.TemplateDefinition{
		{
			Name:        "setup-{variant}",
			Description: "Install build and test requirements for {variant}",
			Variants:    allVariants,
			Commands: []config.CommandDefinition{
				{Tool: "interpreter", Args: []string{"-m", "ensurepip"}, BestEffort: true},
				{Tool: "pip", Args: []string{"install", "--upgrade", "setuptools", "wheel", "pip", "pytest_remotedata"}},
			},
		},
		{
			Name:        "dev-{variant}",
			Description: "Editable development install for {variant}",
			Deps:        []string{"clean", "setup-{variant}"},
			Variants:    allVariants,
			Commands: []config.CommandDefinition{
				{Tool: "pip", Args: []string{"install", "--upgrade", "-e", ".[dev]"}},
				{Args: []string{"pre-commit", "install", "-f", "--install-hooks"}},
			},
		},
		{
			Name:        "install-{variant}",
			Description: "Install the package for {variant}",
			Deps:        []string{"setup-{variant}"},
			Variants:    allVariants,
			Commands: []config.CommandDefinition{
				{Tool: "pip", Args: []string{"install", "--upgrade", "."}},
			},
		},
		{
			Name:        "test-{variant}",
			DefaultName: "test-univ",
			Description: "Compile and run the test suite with {variant}",
			Deps:        []string{"clean"},
			Env:         map[string]string{EnvUseColor: "TRUE"},
			Variants:    allVariants,
			Commands:    testCommands(nil),
		},
	}
}

// testCommands compiles the test sources with extra flags and runs the
// compiled suite.
func testCommands(extra []string) []config.CommandDefinition {
	args := append(append([]string(nil), testArgs...), extra...)

	return []config.CommandDefinition{
		{Tool: "interpreter", Args: args, ForceArgs: forceArgs, PassArgs: true},
		{Tool: "interpreter", Args: []string{"./coconut/tests/dest/runner.py"}},
		{Tool: "interpreter", Args: []string{"./coconut/tests/dest/extras.py"}},
	}
}

func tasks() []config.TaskDefinition {
	colour := map[string]string{EnvUseColor: "TRUE"}

	return []config.TaskDefinition{
		{
			Name:        "format",
			Description: "Run the formatting hooks over every file",
			Deps:        []string{"dev"},
			Commands: []config.CommandDefinition{
				{Args: []string{"pre-commit", "autoupdate"}},
				{Args: []string{"pre-commit", "run", "--all-files"}},
			},
		},
		{
			Name:        "test-pyparsing",
			Description: "Run the test suite on the pure-interpreter parser",
			Deps:        []string{"clean"},
			Env:         map[string]string{EnvUseColor: "TRUE", EnvPurePython: "TRUE"},
			Commands:    testCommands(nil),
		},
		{
			Name:        "test-mypy",
			Description: "Run the test suite with type checking",
			Deps:        []string{"clean"},
			Env:         colour,
			Commands: testCommands([]string{
				"--target", "sys", "--mypy",
				"--follow-imports", "silent", "--ignore-missing-imports", "--allow-redefinition",
			}),
		},
		{
			Name:        "test-verbose",
			Description: "Run the test suite with verbose compiler output",
			Deps:        []string{"clean"},
			Env:         colour,
			Commands:    testCommands([]string{"--verbose", "--jobs", "0"}),
		},
		{
			Name:        "test-minify",
			Description: "Run the test suite on minified output",
			Deps:        []string{"clean"},
			Env:         colour,
			Commands:    testCommands([]string{"--minify"}),
		},
		{
			Name:        "test-easter-eggs",
			Description: "Run the test suite including the hidden tests",
			Deps:        []string{"clean"},
			Env:         colour,
			Commands: []config.CommandDefinition{
				{Tool: "interpreter", Args: testArgs, ForceArgs: forceArgs, PassArgs: true},
				{Tool: "interpreter", Args: []string{"./coconut/tests/dest/runner.py", "--test-easter-eggs"}},
				{Tool: "interpreter", Args: []string{"./coconut/tests/dest/extras.py"}},
			},
		},
		{
			Name:        "test-all",
			Description: "Run the complete test suite under pytest",
			Deps:        []string{"clean"},
			Env:         colour,
			Commands: []config.CommandDefinition{
				{Args: []string{"pytest", "--strict-markers", "-s", "./coconut/tests"}, PassArgs: true},
			},
		},
		{
			Name:        "docs",
			Description: "Build the HTML documentation",
			Deps:        []string{"clean"},
			Commands: []config.CommandDefinition{
				{Args: []string{"sphinx-build", "-b", "html", ".", "./docs"}, PassArgs: true},
				{Cleanup: "clean-index"},
			},
		},
		{
			Name:        "clean",
			Description: "Remove generated files, bytecode and caches",
			Commands: []config.CommandDefinition{
				{Cleanup: "clean"},
				{Args: []string{"find", ".", "-name", "*.pyc", "-delete"}, BestEffort: true, SkipIfMissing: true},
				{Args: []string{"C:/GnuWin32/bin/find.exe", ".", "-name", "*.pyc", "-delete"}, BestEffort: true, SkipIfMissing: true},
				{Args: []string{"find", ".", "-name", "__pycache__", "-delete"}, BestEffort: true, SkipIfMissing: true},
				{Args: []string{"C:/GnuWin32/bin/find.exe", ".", "-name", "__pycache__", "-delete"}, BestEffort: true, SkipIfMissing: true},
			},
		},
		{
			Name:        "wipe",
			Description: "Clean and uninstall every site hook and package",
			Deps:        []string{"clean"},
			Commands:    wipeCommands(),
		},
		{
			Name:        "build",
			Description: "Build source and wheel distributions",
			Deps:        []string{"clean"},
			Commands: []config.CommandDefinition{
				{Tool: "interpreter", Args: []string{"setup.py", "sdist", "bdist_wheel"}},
			},
		},
		{
			Name:        "just-upload",
			Description: "Upload the built distributions",
			Commands: []config.CommandDefinition{
				{Tool: "pip", Args: []string{"install", "--upgrade", "--ignore-installed", "twine"}},
				{Args: []string{"twine", "upload", "dist/*"}, ExpandGlobs: true, PassArgs: true},
			},
		},
		{
			Name:        "upload",
			Description: "Wipe, build and upload a release",
			Deps:        []string{"wipe", "dev", "build", "just-upload"},
		},
		{
			Name:        "check-reqs",
			Description: "Report outdated requirements",
			Commands: []config.CommandDefinition{
				{Tool: "interpreter", Args: []string{"./coconut/requirements.py"}},
			},
		},
		{
			Name:        "diff",
			Description: "Show changes against the development branch",
			Commands: []config.CommandDefinition{
				{Args: []string{"git", "diff", "origin/develop"}, PassArgs: true},
			},
		},
	}
}

// wipeCommands uninstalls the site hooks and packages from every interpreter.
// Interpreters that are not installed are skipped.
func wipeCommands() []config.CommandDefinition {
	cmds := []config.CommandDefinition{{Cleanup: "wipe"}}

	for _, v := range allVariants {
		cmds = append(cmds,
			config.CommandDefinition{
				Tool: "coconut", Variant: v, Args: []string{"--site-uninstall"},
				BestEffort: true, SkipIfMissing: true,
			},
			config.CommandDefinition{
				Tool: "pip", Variant: v, Args: []string{"uninstall", "-y", "coconut", "coconut-develop"},
				BestEffort: true, SkipIfMissing: true,
			},
		)
	}

	return cmds
}
