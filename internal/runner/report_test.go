// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := newReport("upload", ModeForce, "default", []string{"clean", "build", "upload"})
	r.Tasks[0].Status = StatusSucceeded
	r.Tasks[0].Warnings = []string{"find: exit code 1"}
	r.Tasks[0].Duration = 1500 * time.Millisecond
	r.Tasks[1].Status = StatusFailed
	r.Failure = &FailureSummary{Task: "build", Command: "<interpreter> setup.py sdist", ExitCode: 2, Message: "boom"}

	return r
}

func TestReportWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteText(&buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "upload (force, variant default)", lines[0])
	assert.Contains(t, lines[1], "clean [1.5s]")
	assert.Contains(t, out, "find: exit code 1")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "upload (pending)")
	assert.Contains(t, out, `task "build", command "<interpreter> setup.py sdist", exit code 2`)
}

func TestReportBinaryRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	orig := sampleReport()
	require.NoError(t, orig.WriteBinary(&buf))

	got, err := ReadBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestReadBinaryGarbage(t *testing.T) {
	_, err := ReadBinary(strings.NewReader("not gob"))
	assert.ErrorIs(t, err, ErrReadGob)
}

func TestReportSucceeded(t *testing.T) {
	r := newReport("a", ModeIncremental, "default", []string{"a"})
	assert.False(t, r.Succeeded())

	r.Tasks[0].Status = StatusSucceeded
	assert.True(t, r.Succeeded())

	_, ok := r.Task("missing")
	assert.False(t, ok)
}
