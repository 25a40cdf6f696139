// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

func shInvocation(script string, env map[string]string, stdout, stderr *bytes.Buffer) Invocation {
	return Invocation{
		Task:    "t",
		Command: script,
		Path:    "/bin/sh",
		Args:    []string{"sh", "-c", script},
		Dir:     os.TempDir(),
		Env:     env,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}

func TestOSProcess_Output(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	var stdout, stderr bytes.Buffer

	code, err := (&OSProcess{}).RunProcess(testCtx(), shInvocation(`echo "out $FOO"; echo err 1>&2`, map[string]string{"FOO": "BAR"}, &stdout, &stderr))
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "out BAR\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestOSProcess_ExitCode(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	code, err := (&OSProcess{}).RunProcess(testCtx(), shInvocation("exit 7", nil, &bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestOSProcess_EnvIsExactlyInvocationEnv(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("STOOP_LEAK_CHECK", "leaked")

	var stdout bytes.Buffer

	_, err := (&OSProcess{}).RunProcess(testCtx(), shInvocation(`echo "[$STOOP_LEAK_CHECK]"`, map[string]string{}, &stdout, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", stdout.String())
}

func TestOSProcess_StartFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	inv := Invocation{Path: "/not/a/real/command", Args: []string{"command"}}
	code, err := (&OSProcess{}).RunProcess(testCtx(), inv)
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, ErrCouldNotStartProcess)
}

func TestOSProcess_ContextCancelKills(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(testCtx(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	code, err := (&OSProcess{}).RunProcess(ctx, shInvocation("exec sleep 10", nil, &bytes.Buffer{}, &bytes.Buffer{}))

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, ErrProcessKilled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOSProcess_SignalForwardedThenKilled(t *testing.T) {
	skipOnWindows(t)
	defer goleak.VerifyNone(t)

	p := &OSProcess{sigCh: make(chan os.Signal, 1)}

	// the child ignores the first interrupt, so only the duplicate stops it
	inv := shInvocation(`trap 'echo got-int' INT; echo ready; while true; do sleep 0.05; done`, nil, &bytes.Buffer{}, &bytes.Buffer{})

	go func() {
		time.Sleep(200 * time.Millisecond)
		p.sigCh <- os.Interrupt
		time.Sleep(200 * time.Millisecond)
		p.sigCh <- os.Interrupt
	}()

	code, err := p.RunProcess(testCtx(), inv)
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, ErrDuplicateSignalReceived)
	assert.Contains(t, inv.Stdout.(*bytes.Buffer).String(), "got-int")
}

func TestLookPath(t *testing.T) {
	skipOnWindows(t)

	bin := t.TempDir()
	exe := filepath.Join(bin, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "data"), nil, 0o644))

	env := map[string]string{"PATH": "/nonexistent" + string(os.PathListSeparator) + bin}

	got, err := lookPath("tool", "/", env)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = lookPath("data", "/", env)
	assert.ErrorIs(t, err, ErrProgramNotFound)

	_, err = lookPath("tool", "/", map[string]string{"PATH": "/nonexistent"})
	assert.ErrorIs(t, err, ErrProgramNotFound)

	got, err = lookPath("./tool", bin, nil)
	require.NoError(t, err)
	assert.Equal(t, exe, got)

	_, err = lookPath("", "/", env)
	assert.ErrorIs(t, err, ErrEmptyCommand)
}
