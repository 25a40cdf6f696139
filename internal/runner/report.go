// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrWriteGob is returned when writing a report in binary form fails.
	ErrWriteGob = errors.New("failed to write binary report")
	// ErrReadGob is returned when reading a binary report fails.
	ErrReadGob = errors.New("failed to read binary report")
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	stylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Report is a snapshot of one run.
type Report struct {
	Root     string
	Mode     Mode
	Variant  string
	Tasks    []TaskResult
	Failure  *FailureSummary
	Duration time.Duration
}

// TaskResult records what happened to one task.
type TaskResult struct {
	Name     string
	Status   Status
	Commands int
	Warnings []string
	Started  time.Time
	Duration time.Duration
}

// FailureSummary is the serialisable form of a CommandFailure.
type FailureSummary struct {
	Task     string
	Command  string
	ExitCode int
	Message  string
}

func newReport(root string, mode Mode, variantKey string, order []string) *Report {
	r := &Report{
		Root:    root,
		Mode:    mode,
		Variant: variantKey,
		Tasks:   make([]TaskResult, len(order)),
	}

	for i, n := range order {
		r.Tasks[i] = TaskResult{Name: n, Status: StatusPending}
	}

	return r
}

func (r *Report) result(name string) *TaskResult {
	for i := range r.Tasks {
		if r.Tasks[i].Name == name {
			return &r.Tasks[i]
		}
	}

	r.Tasks = append(r.Tasks, TaskResult{Name: name})

	return &r.Tasks[len(r.Tasks)-1]
}

// Task returns the result for name.
func (r *Report) Task(name string) (TaskResult, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}

	return TaskResult{}, false
}

// Succeeded reports whether every task succeeded.
func (r *Report) Succeeded() bool {
	for _, t := range r.Tasks {
		if t.Status != StatusSucceeded {
			return false
		}
	}

	return r.Failure == nil
}

// Warnings returns every recorded warning in task order.
func (r *Report) Warnings() []string {
	var out []string
	for _, t := range r.Tasks {
		out = append(out, t.Warnings...)
	}

	return out
}

// WriteText writes a human readable summary to w.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%s, variant %s)\n", r.Root, r.Mode, r.Variant); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	for _, t := range r.Tasks {
		var mark string

		switch t.Status {
		case StatusSucceeded:
			mark = styleOK.Render("✓")
			if len(t.Warnings) > 0 {
				mark = styleWarn.Render("!")
			}
		case StatusFailed:
			mark = styleFail.Render("✗")
		case StatusRunning:
			mark = styleWarn.Render("…")
		default:
			mark = stylePending.Render("~")
		}

		line := fmt.Sprintf("%s %s", mark, t.Name)
		if t.Status.Terminal() {
			line += fmt.Sprintf(" [%s]", t.Duration.Round(time.Millisecond))
		} else {
			line += " (" + t.Status.String() + ")"
		}

		fmt.Fprintln(w, line) //nolint:errcheck

		for _, warn := range t.Warnings {
			fmt.Fprintf(w, "  %s %s\n", styleWarn.Render("➜ Warning:"), warn) //nolint:errcheck
		}
	}

	if r.Failure != nil {
		fmt.Fprintf( //nolint:errcheck
			w,
			"%s task %q, command %q, exit code %d\n",
			styleFail.Render("➜ Failed:"),
			r.Failure.Task,
			r.Failure.Command,
			r.Failure.ExitCode,
		)
	}

	return nil
}

// WriteBinary writes the report in gob form, for later display with ReadBinary.
func (r *Report) WriteBinary(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(r); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadBinary reads a report written by WriteBinary.
func ReadBinary(rd io.Reader) (*Report, error) {
	r := new(Report)
	if err := gob.NewDecoder(rd).Decode(r); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	return r, nil
}
