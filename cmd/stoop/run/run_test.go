// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/stoop/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestTaskAndArgs(t *testing.T) {
	tests := []struct {
		name     string
		in       []string
		wantTask string
		wantArgs []string
		wantErr  error
	}{
		{name: "no task", in: nil, wantErr: ErrNoTask},
		{name: "task only", in: []string{"test"}, wantTask: "test", wantArgs: []string{}},
		{name: "separator", in: []string{"test", "--", "-k", "fast"}, wantTask: "test", wantArgs: []string{"-k", "fast"}},
		{name: "second separator forwarded", in: []string{"echo", "--", "--", "y"}, wantTask: "echo", wantArgs: []string{"--", "y"}},
		{name: "flag after separator", in: []string{"test", "--", "--force"}, wantTask: "test", wantArgs: []string{"--force"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				task string
				rest []string
				err  error
			)

			cmd := &cli.Command{
				Name: "run",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: forceFlag},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					task, rest, err = taskAndArgs(cmd.Args())
					return nil
				},
			}

			require.NoError(t, cmd.Run(context.Background(), append([]string{"run"}, tt.in...)))

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTask, task)
			assert.Equal(t, tt.wantArgs, rest)
		})
	}
}

func TestRunCmdReportsFailingCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	dir := t.TempDir()
	taskFile := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(taskFile, []byte(`
tasks:
  - name: hello
    commands:
      - args: [sh, -c, "echo hello from $STOOP_MODE"]
  - name: broken
    deps: [hello]
    commands:
      - args: [sh, -c, "exit 3"]
      - args: [sh, -c, "echo never"]
`), 0o644))

	outFile := filepath.Join(dir, "report.gob")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	RunCmd.Writer = stdout
	RunCmd.ErrWriter = stderr

	err := RunCmd.Run(context.Background(), []string{
		"run", "-f", taskFile, "-C", dir, "--force", "--out", outFile, "broken",
	})

	var cf *runner.CommandFailure
	require.True(t, errors.As(err, &cf), "got %v", err)
	assert.Equal(t, 3, cf.ExitCode)
	assert.Equal(t, "broken", cf.Task)

	assert.Contains(t, stdout.String(), "hello from force")
	assert.NotContains(t, stdout.String(), "never")
	assert.Contains(t, stderr.String(), `task "broken" failed`)
	assert.Contains(t, stderr.String(), "exit code 3")

	f, err := os.Open(outFile)
	require.NoError(t, err)

	defer f.Close() //nolint:errcheck

	report, err := runner.ReadBinary(f)
	require.NoError(t, err)
	assert.False(t, report.Succeeded())
	require.NotNil(t, report.Failure)
	assert.Equal(t, "broken", report.Failure.Task)
}
