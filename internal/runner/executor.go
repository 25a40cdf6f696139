// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/matt-FFFFFF/stoop/internal/envscope"
	"github.com/matt-FFFFFF/stoop/internal/progress"
	"github.com/matt-FFFFFF/stoop/internal/taskgraph"
	"github.com/matt-FFFFFF/stoop/internal/teereader"
	"github.com/matt-FFFFFF/stoop/internal/variant"
)

// Cleaner is a cleanup operation that a command can refer to by name.
// *cleanup.Manager satisfies it.
type Cleaner interface {
	Clean(ctx context.Context) error
}

// Resolver looks up variant toolchains. *variant.Resolver satisfies it.
type Resolver interface {
	Resolve(key string) (variant.Toolchain, error)
}

// Executor runs tasks from a graph.
type Executor struct {
	graph          *taskgraph.Graph
	resolver       Resolver
	proc           ProcessRunner
	cleaners       map[string]Cleaner
	mode           Mode
	defaultVariant string
	reporter       progress.Reporter
	environ        map[string]string
	workdir        string
	stdout         io.Writer
	stderr         io.Writer
}

// New creates an executor for graph. Without options it runs real processes
// with the current environment and working directory.
func New(graph *taskgraph.Graph, resolver Resolver, opts ...Option) *Executor {
	e := &Executor{
		graph:    graph,
		resolver: resolver,
		proc:     &OSProcess{},
		reporter: progress.NewNullReporter(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Plan resolves root and composes every command without running anything.
func (e *Executor) Plan(root string, args ...string) ([]Step, error) {
	order, err := e.graph.Resolve(root)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := e.preflight(order); err != nil {
		return nil, err
	}

	workdir, err := e.resolveWorkdir()
	if err != nil {
		return nil, err
	}

	var steps []Step

	for _, name := range order {
		task, _ := e.graph.Task(name)
		taskEnv := envscope.Effective(task, e.processEnv())

		for _, c := range task.Commands {
			st, err := e.compose(task, c, taskEnv, workdir, passArgsFor(name, root, args))
			if err != nil {
				return nil, err
			}

			steps = append(steps, st)
		}
	}

	return steps, nil
}

// Run executes root and its prerequisites. Each task runs at most once.
// The returned report is non-nil whenever any task was considered, including
// on failure. Graph and reference errors are returned before anything runs.
func (e *Executor) Run(ctx context.Context, root string, args ...string) (*Report, error) {
	order, err := e.graph.Resolve(root)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := e.preflight(order); err != nil {
		return nil, err
	}

	workdir, err := e.resolveWorkdir()
	if err != nil {
		return nil, err
	}

	ctx = ctxlog.With(ctx, "root", root)
	ctxlog.Info(ctx, "run started", "order", order, "mode", e.mode.String())

	st := newExecutionState(order)
	report := newReport(root, e.mode, e.variantKey(taskgraph.Command{}), order)
	start := time.Now()

	defer func() {
		report.Duration = time.Since(start)
	}()

	procEnv := e.processEnv()

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			ctxlog.Warn(ctx, "run cancelled", "next", name)
			return report, fmt.Errorf("%w before task %q: %w", ErrCancelled, name, err)
		}

		if st.get(name) == StatusSucceeded {
			continue
		}

		task, _ := e.graph.Task(name)

		if err := e.runTask(ctx, st, report, task, procEnv, workdir, passArgsFor(name, root, args)); err != nil {
			return report, err
		}
	}

	ctxlog.Info(ctx, "run finished")

	return report, nil
}

func (e *Executor) runTask(
	ctx context.Context,
	st *executionState,
	report *Report,
	task taskgraph.Task,
	procEnv map[string]string,
	workdir string,
	passArgs []string,
) error {
	ctx = ctxlog.With(ctx, "task", task.Name)
	res := report.result(task.Name)

	if err := st.transition(task.Name, StatusRunning); err != nil {
		return err
	}

	res.Status = StatusRunning
	res.Started = time.Now()

	defer func() {
		res.Duration = time.Since(res.Started)
	}()

	e.report(progress.Event{Task: task.Name, Type: progress.EventStarted, Message: task.Description})

	taskEnv := envscope.Effective(task, procEnv)

	for _, c := range task.Commands {
		warning, err := e.runCommand(ctx, task, c, taskEnv, workdir, passArgs)
		if warning != "" {
			ctxlog.Warn(ctx, "best-effort command failed", "command", c.String(), "detail", warning)
			res.Warnings = append(res.Warnings, warning)
		}

		if err == nil {
			res.Commands++
			continue
		}

		_ = st.transition(task.Name, StatusFailed)
		res.Status = StatusFailed

		var cf *CommandFailure
		if errors.As(err, &cf) {
			report.Failure = &FailureSummary{
				Task:     cf.Task,
				Command:  cf.Command,
				ExitCode: cf.ExitCode,
				Message:  err.Error(),
			}
		}

		e.report(progress.Event{Task: task.Name, Command: c.String(), Type: progress.EventFailed, Data: progress.EventData{Error: err}})
		ctxlog.Error(ctx, "task failed", "error", err)

		return err
	}

	if err := st.transition(task.Name, StatusSucceeded); err != nil {
		return err
	}

	res.Status = StatusSucceeded
	e.report(progress.Event{Task: task.Name, Type: progress.EventCompleted})

	return nil
}

// runCommand returns a warning for a tolerated failure, or an error that stops the run.
func (e *Executor) runCommand(
	ctx context.Context,
	task taskgraph.Task,
	c taskgraph.Command,
	taskEnv map[string]string,
	workdir string,
	passArgs []string,
) (string, error) {
	label := c.String()
	e.report(progress.Event{Task: task.Name, Command: label, Type: progress.EventStarted})

	fail := func(code int, err error) (string, error) {
		if c.BestEffort && ctx.Err() == nil {
			e.report(progress.Event{Task: task.Name, Command: label, Type: progress.EventWarning, Data: progress.EventData{ExitCode: code, Error: err}})
			return fmt.Sprintf("%s: exit code %d: %v", label, code, err), nil
		}

		return "", &CommandFailure{Task: task.Name, Command: label, ExitCode: code, Err: err}
	}

	if c.IsCleanup() {
		if err := e.cleaners[c.Cleanup].Clean(ctx); err != nil {
			return fail(1, err)
		}

		e.report(progress.Event{Task: task.Name, Command: label, Type: progress.EventCompleted})

		return "", nil
	}

	step, err := e.compose(task, c, taskEnv, workdir, passArgs)
	if err != nil {
		return fail(-1, err)
	}

	path, err := e.proc.LookPath(step.Argv[0], step.Dir, step.Env)
	if err != nil {
		if c.SkipIfMissing {
			msg := fmt.Sprintf("%s: skipped, %v", label, err)
			e.report(progress.Event{Task: task.Name, Command: label, Type: progress.EventSkipped, Message: msg})

			return msg, nil
		}

		return fail(ExitCodeNotFound, err)
	}

	stdout := teereader.NewLastLineWriter(e.stdout, e.outputLine(task.Name, label, false))
	stderr := teereader.NewLastLineWriter(e.stderr, e.outputLine(task.Name, label, true))

	ctxlog.Debug(ctx, "running command", "argv", step.Argv, "dir", step.Dir)

	code, err := e.proc.RunProcess(ctx, Invocation{
		Task:    task.Name,
		Command: label,
		Path:    path,
		Args:    step.Argv,
		Dir:     step.Dir,
		Env:     step.Env,
		Stdout:  stdout,
		Stderr:  stderr,
	})

	stdout.Flush()
	stderr.Flush()

	if err != nil || code != 0 {
		if err == nil {
			err = fmt.Errorf("exit status %d", code)
		}

		return fail(code, err)
	}

	e.report(progress.Event{Task: task.Name, Command: label, Type: progress.EventCompleted})

	return "", nil
}

// preflight rejects dangling references before any command runs.
func (e *Executor) preflight(order []string) error {
	var errs []error

	for _, name := range order {
		task, _ := e.graph.Task(name)

		for _, c := range task.Commands {
			switch {
			case c.IsCleanup():
				if _, ok := e.cleaners[c.Cleanup]; !ok {
					errs = append(errs, fmt.Errorf("%w %q in task %q", ErrUnknownCleanup, c.Cleanup, name))
				}
			case c.Tool != variant.ToolNone:
				if _, err := e.toolArgv(c); err != nil {
					errs = append(errs, fmt.Errorf("task %q: %w", name, err))
				}
			case len(c.Args) == 0 || c.Args[0] == "":
				errs = append(errs, fmt.Errorf("%w: task %q", ErrEmptyCommand, name))
			}
		}
	}

	return errors.Join(errs...)
}

func (e *Executor) resolveWorkdir() (string, error) {
	if e.workdir != "" {
		return e.workdir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining working directory: %w", err)
	}

	return wd, nil
}

func (e *Executor) processEnv() map[string]string {
	if e.environ != nil {
		return e.environ
	}

	return envscope.FromEnviron(os.Environ())
}

func (e *Executor) report(ev progress.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	e.reporter.Report(ev)
}

func (e *Executor) outputLine(task, command string, isStderr bool) func(string) {
	return func(line string) {
		e.report(progress.Event{
			Task:    task,
			Command: command,
			Type:    progress.EventOutput,
			Data:    progress.EventData{OutputLine: line, IsStderr: isStderr},
		})
	}
}

// passArgsFor returns args only for the root task.
func passArgsFor(name, root string, args []string) []string {
	if name != root {
		return nil
	}

	return args
}
