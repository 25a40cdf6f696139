// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("boom")
}

func newTestHandler(buf *bytes.Buffer, opts ...Option) *PrettyHandler {
	return NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, append([]Option{WithDestinationWriter(buf)}, opts...)...)
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		msg      string
		attrs    []slog.Attr
		contains []string
		absent   []string
	}{
		{
			name:     "message without attrs",
			level:    slog.LevelInfo,
			msg:      "plain",
			contains: []string{"INFO:", "plain"},
			absent:   []string{"{"},
		},
		{
			name:     "message with attrs",
			level:    slog.LevelWarn,
			msg:      "with attrs",
			attrs:    []slog.Attr{slog.String("task", "build"), slog.Int("exit", 2)},
			contains: []string{"WARN:", "with attrs", `"task": "build"`, `"exit": 2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			h := newTestHandler(buf)

			r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), tt.level, tt.msg, 0)
			r.AddAttrs(tt.attrs...)

			require.NoError(t, h.Handle(context.Background(), r))

			out := buf.String()
			assert.Contains(t, out, "[03:04:05.000]")

			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}

			for _, a := range tt.absent {
				assert.NotContains(t, out, a)
			}
		})
	}
}

func TestPrettyHandler_OutputEmptyAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	h := newTestHandler(buf, WithOutputEmptyAttrs())

	require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0)))
	assert.Contains(t, buf.String(), "{}")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(newTestHandler(buf)).With("run", "r1").WithGroup("cmd")
	logger.Info("started", "exit", 0)

	out := buf.String()
	assert.Contains(t, out, `"run": "r1"`)
	assert.Contains(t, out, `"cmd": {`)
}

func TestPrettyHandler_ReplaceAttrDropsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(buf))

	require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelWarn, "no time", 0)))
	assert.Equal(t, "WARN: no time \n", buf.String())
}

func TestPrettyHandler_Colour(t *testing.T) {
	buf := &bytes.Buffer{}
	h := newTestHandler(buf, WithColour())
	assert.True(t, h.colour)

	plain := newTestHandler(&bytes.Buffer{})
	assert.False(t, plain.colour)
}

func TestPrettyHandler_AutoColourNonFile(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{}, WithAutoColour())
	assert.False(t, h.colour)
}

func TestPrettyHandler_ColourRendersANSI(t *testing.T) {
	buf := &bytes.Buffer{}
	h := newTestHandler(buf, WithColour())

	require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "broken", 0)))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "ERROR:")
	assert.Contains(t, buf.String(), "broken")

	buf.Reset()

	plain := newTestHandler(buf)
	require.NoError(t, plain.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "broken", 0)))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPrettyHandler_AutoColourFile(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantANSI bool
	}{
		{name: "plain file", wantANSI: false},
		{name: "forced", env: map[string]string{"FORCE_COLOR": "1"}, wantANSI: true},
		{name: "no colour wins", env: map[string]string{"FORCE_COLOR": "1", "NO_COLOR": "1"}, wantANSI: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			f, err := os.Create(filepath.Join(t.TempDir(), "log"))
			require.NoError(t, err)

			defer f.Close() //nolint:errcheck

			h := NewPrettyHandler(nil, WithDestinationWriter(f), WithAutoColour())
			assert.Equal(t, tt.wantANSI, h.colour)

			require.NoError(t, h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelWarn, "careful", 0)))

			data, err := os.ReadFile(f.Name())
			require.NoError(t, err)
			assert.Contains(t, string(data), "careful")
			assert.Equal(t, tt.wantANSI, bytes.Contains(data, []byte("\x1b[")))
		})
	}
}

func TestColourEnabledEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColourEnabled(nil))
}

func TestColourEnabledForce(t *testing.T) {
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, ColourEnabled(nil))
}

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "x", 0))
	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelWarn})
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestSuppressDefaults(t *testing.T) {
	f := suppressDefaults(nil)
	assert.Equal(t, slog.Attr{}, f(nil, slog.String(slog.TimeKey, "t")))
	assert.Equal(t, slog.Attr{}, f(nil, slog.String(slog.LevelKey, "l")))
	assert.Equal(t, slog.Attr{}, f(nil, slog.String(slog.MessageKey, "m")))
	assert.Equal(t, slog.String("k", "v"), f(nil, slog.String("k", "v")))

	upper := suppressDefaults(func(_ []string, a slog.Attr) slog.Attr {
		return slog.String(a.Key, "changed")
	})
	assert.Equal(t, slog.String("k", "changed"), upper(nil, slog.String("k", "v")))
}
