// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"fmt"
)

// Status is the execution state of a task within one run.
type Status int

const (
	// StatusPending means the task has not started.
	StatusPending Status = iota
	// StatusRunning means the task's commands are executing.
	StatusRunning
	// StatusSucceeded is terminal. Best-effort failures still end here.
	StatusSucceeded
	// StatusFailed is terminal and stops the run.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s cannot change again within a run.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// executionState tracks task status for a single run.
type executionState struct {
	status map[string]Status
}

func newExecutionState(names []string) *executionState {
	st := &executionState{status: make(map[string]Status, len(names))}
	for _, n := range names {
		st.status[n] = StatusPending
	}

	return st
}

func (st *executionState) get(name string) Status {
	return st.status[name]
}

// transition moves name to the next state.
// Pending -> Running -> Succeeded | Failed is the only legal path.
func (st *executionState) transition(name string, to Status) error {
	from, ok := st.status[name]
	if !ok {
		return fmt.Errorf("%w: task %q is not part of this run", ErrInvalidTransition, name)
	}

	legal := (from == StatusPending && to == StatusRunning) ||
		(from == StatusRunning && to.Terminal())
	if !legal {
		return fmt.Errorf("%w: task %q from %s to %s", ErrInvalidTransition, name, from, to)
	}

	st.status[name] = to

	return nil
}
