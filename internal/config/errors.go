// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import "errors"

var (
	// ErrGetTaskFile is returned when a task file cannot be fetched.
	ErrGetTaskFile = errors.New("failed to get task file")
	// ErrParseTaskFile is returned when a task file cannot be decoded.
	ErrParseTaskFile = errors.New("failed to parse task file")
	// ErrInvalidCommand is returned for a command that is neither a process nor a cleanup.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrDuplicateCleanup is returned when two cleanup managers share a name.
	ErrDuplicateCleanup = errors.New("duplicate cleanup name")
	// ErrUnknownCleanup is returned when a command refers to an undeclared cleanup manager.
	ErrUnknownCleanup = errors.New("unknown cleanup name")
	// ErrBuildProject is returned when the decoded files do not form a valid project.
	ErrBuildProject = errors.New("failed to build project")
)
