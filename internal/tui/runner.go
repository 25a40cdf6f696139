// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/stoop/internal/progress"
	"github.com/matt-FFFFFF/stoop/internal/runner"
)

// RunFunc performs a run, reporting progress to reporter.
type RunFunc func(ctx context.Context, reporter progress.Reporter) (*runner.Report, error)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	send   func(tea.Msg)
	closed bool
	mutex  sync.RWMutex
}

// NewReporter creates a reporter that delivers events with send.
func NewReporter(send func(tea.Msg)) *Reporter {
	return &Reporter{send: send}
}

// Report implements progress.Reporter.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.send == nil {
		return
	}

	tr.send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// NewRunner creates a new TUI runner. opts are passed to the tea program.
func NewRunner(ctx context.Context, title string, opts ...tea.ProgramOption) *Runner {
	model := NewModel(ctx, title)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewReporter(program.Send),
	}
}

// Reporter returns the progress reporter for this runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run starts the TUI and performs run. After the run finishes the TUI stays
// open until the user quits. Quitting early cancels the run and waits for it
// to return.
func (r *Runner) Run(ctx context.Context, run RunFunc) (*runner.Report, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	type outcome struct {
		report *runner.Report
		err    error
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultChan := make(chan outcome, 1)

	go func() {
		report, err := run(runCtx, r.reporter)
		resultChan <- outcome{report: report, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		res    outcome
		tuiErr error
	)

	select {
	case res = <-resultChan:
		r.program.Send(RunCompletedMsg{Report: res.report, Err: res.err})
		tuiErr = <-tuiDone

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		r.reporter.Close()
		cancel()

		res = <-resultChan

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()

		res = <-resultChan
		<-tuiDone
	}

	if res.err != nil {
		return res.report, res.err
	}

	return res.report, tuiErr
}
