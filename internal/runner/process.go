// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/matt-FFFFFF/stoop/internal/envscope"
	"github.com/matt-FFFFFF/stoop/internal/signalbroker"
)

// Invocation is a fully composed process to run.
type Invocation struct {
	Task    string
	Command string
	// Path is the resolved program.
	Path string
	// Args is the full argument vector, Args[0] being the program name.
	Args   []string
	Dir    string
	Env    map[string]string
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessRunner locates and runs external programs.
type ProcessRunner interface {
	// LookPath finds file using the PATH in env. Names containing a separator
	// are resolved relative to dir.
	LookPath(file, dir string, env map[string]string) (string, error)
	// RunProcess runs inv to completion and returns its exit code.
	// A non-nil error means the process could not be run or was killed.
	RunProcess(ctx context.Context, inv Invocation) (int, error)
}

var _ ProcessRunner = (*OSProcess)(nil)

// OSProcess runs programs with os.StartProcess.
type OSProcess struct {
	sigCh chan os.Signal // allows injecting signals in tests
}

// LookPath implements ProcessRunner.
func (p *OSProcess) LookPath(file, dir string, env map[string]string) (string, error) {
	return lookPath(file, dir, env)
}

// RunProcess implements ProcessRunner. Output is copied to inv.Stdout and
// inv.Stderr while the process runs. The first of each signal is forwarded to
// the child; a repeated signal or the end of ctx kills it.
func (p *OSProcess) RunProcess(ctx context.Context, inv Invocation) (int, error) {
	logger := ctxlog.Logger(ctx).With("task", inv.Task, "command", inv.Command)
	logger.Debug("command info", "path", inv.Path, "cwd", inv.Dir, "args", inv.Args)

	sigCh := p.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(ctx, sigCh)
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return -1, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()

		return -1, errors.Join(ErrFailedToCreatePipe, err)
	}

	ps, err := os.StartProcess(inv.Path, inv.Args, &os.ProcAttr{
		Dir:   inv.Dir,
		Env:   envscope.ToEnviron(inv.Env),
		Files: []*os.File{os.Stdin, wOut, wErr},
	})

	// the child holds its own copies of the write ends
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()

		return -1, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("process started", "pid", ps.Pid)

	var pumps sync.WaitGroup

	pump := func(dst io.Writer, src *os.File) {
		defer pumps.Done()
		defer src.Close() //nolint:errcheck

		if dst == nil {
			dst = io.Discard
		}

		_, _ = io.Copy(dst, src)
	}

	pumps.Add(2)

	go pump(inv.Stdout, rOut)
	go pump(inv.Stderr, rErr)

	var (
		killMu    sync.Mutex
		killedErr error
		watchdog  sync.WaitGroup
		done      = make(chan struct{})
	)

	setKilled := func(e error) {
		killMu.Lock()
		defer killMu.Unlock()

		if killedErr == nil {
			killedErr = e
		}
	}

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()

		seen := make(map[os.Signal]struct{})
		sigs := sigCh

		for {
			select {
			case s, ok := <-sigs:
				if !ok {
					sigs = nil
					continue
				}

				if _, dup := seen[s]; dup {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					killPs(ctx, ps)
					setKilled(ErrDuplicateSignalReceived)

					return
				}

				seen[s] = struct{}{}

				logger.Info("forwarding signal", "signal", s.String())

				if err := ps.Signal(s); err != nil && !errors.Is(err, os.ErrProcessDone) {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

			case <-ctx.Done():
				logger.Info("context done, killing process")
				killPs(ctx, ps)
				setKilled(errors.Join(ErrProcessKilled, ctx.Err()))

				return

			case <-done:
				return
			}
		}
	}()

	state, waitErr := ps.Wait()

	close(done)
	watchdog.Wait()
	pumps.Wait()

	if waitErr != nil {
		return -1, fmt.Errorf("waiting for process: %w", waitErr)
	}

	code := state.ExitCode()
	logger.Debug("process finished", "exitCode", code)

	killMu.Lock()
	defer killMu.Unlock()

	if killedErr != nil {
		return -1, killedErr
	}

	return code, nil
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

// lookPath searches the PATH from env rather than the current process, so a
// task that overrides PATH finds its own programs.
func lookPath(file, dir string, env map[string]string) (string, error) {
	if file == "" {
		return "", ErrEmptyCommand
	}

	exts := executableExtensions(env)

	if strings.ContainsAny(file, `/\`) {
		p := file
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}

		if found, ok := findExecutable(p, exts); ok {
			return found, nil
		}

		return "", fmt.Errorf("%w: %s", ErrProgramNotFound, file)
	}

	for _, d := range filepath.SplitList(env["PATH"]) {
		if d == "" {
			d = "."
		}

		if !filepath.IsAbs(d) {
			d = filepath.Join(dir, d)
		}

		if found, ok := findExecutable(filepath.Join(d, file), exts); ok {
			return found, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrProgramNotFound, file)
}

func executableExtensions(env map[string]string) []string {
	if runtime.GOOS != "windows" {
		return []string{""}
	}

	pathext := env["PATHEXT"]
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}

	exts := []string{""}
	for _, e := range strings.Split(strings.ToLower(pathext), ";") {
		if e != "" {
			exts = append(exts, e)
		}
	}

	return exts
}

func findExecutable(p string, exts []string) (string, bool) {
	for _, ext := range exts {
		candidate := p + ext

		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		if runtime.GOOS != "windows" && info.Mode()&fs.ModePerm&0o111 == 0 {
			continue
		}

		return candidate, true
	}

	return "", false
}
