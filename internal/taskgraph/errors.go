// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is returned when the prerequisite relation contains a cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrUnknownTask is returned when a task name is not registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrDuplicateTask is returned when a task name is registered twice.
	ErrDuplicateTask = errors.New("duplicate task")
	// ErrEmptyTaskName is returned when a task has no name.
	ErrEmptyTaskName = errors.New("task name must not be empty")
)

// CycleError describes a prerequisite chain that revisits a task.
// Path starts and ends with the same task name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// UnknownTaskError is returned for a root or prerequisite that is not registered.
type UnknownTaskError struct {
	Name string
	// RequiredBy is the task that references Name, empty for a root task.
	RequiredBy string
}

func (e *UnknownTaskError) Error() string {
	if e.RequiredBy == "" {
		return fmt.Sprintf("%s %q", ErrUnknownTask, e.Name)
	}

	return fmt.Sprintf("%s %q (required by %q)", ErrUnknownTask, e.Name, e.RequiredBy)
}

func (e *UnknownTaskError) Unwrap() error {
	return ErrUnknownTask
}

// DuplicateTaskError is returned when registering a name that already exists.
type DuplicateTaskError struct {
	Name string
}

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("%s %q", ErrDuplicateTask, e.Name)
}

func (e *DuplicateTaskError) Unwrap() error {
	return ErrDuplicateTask
}
