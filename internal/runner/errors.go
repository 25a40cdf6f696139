// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"errors"
	"fmt"
)

// ExitCodeNotFound is the exit code reported when a program cannot be found.
const ExitCodeNotFound = 127

var (
	// ErrCommandFailed is matched by every *CommandFailure.
	ErrCommandFailed = errors.New("command failed")
	// ErrInvalidTransition is returned for an illegal task state change.
	ErrInvalidTransition = errors.New("invalid task state transition")
	// ErrProgramNotFound is returned when a command's program cannot be located.
	ErrProgramNotFound = errors.New("program not found")
	// ErrEmptyCommand is returned for a process command with no program.
	ErrEmptyCommand = errors.New("command has no program")
	// ErrUnknownCleanup is returned when a command names an unregistered cleanup manager.
	ErrUnknownCleanup = errors.New("unknown cleanup manager")
	// ErrCancelled is returned when the run is cancelled between tasks.
	ErrCancelled = errors.New("run cancelled")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrDuplicateSignalReceived is returned when a second identical signal kills the process.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
	// ErrProcessKilled is returned when the context ends while a process is running.
	ErrProcessKilled = errors.New("process killed")
)

// CommandFailure describes the command that stopped a run.
type CommandFailure struct {
	Task     string
	Command  string
	ExitCode int
	Err      error
}

func (e *CommandFailure) Error() string {
	msg := fmt.Sprintf("task %q: command %q exited with code %d", e.Task, e.Command, e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause and ErrCommandFailed.
func (e *CommandFailure) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCommandFailed}
	}

	return []error{ErrCommandFailed, e.Err}
}
