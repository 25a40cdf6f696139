// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxPartial bounds the unterminated line kept between writes.
// When exceeded the oldest bytes are dropped.
const MaxPartial = 4096

// LastLineWriter forwards everything written to it to an underlying writer
// and reports every complete line to a callback for progress display.
// It is safe for concurrent use.
type LastLineWriter struct {
	w       io.Writer
	onLine  func(string)
	partial []byte
	mu      sync.Mutex
}

// NewLastLineWriter returns a writer that forwards to w. A nil w discards.
// onLine, when not nil, is called with every complete line.
func NewLastLineWriter(w io.Writer, onLine func(string)) *LastLineWriter {
	if w == nil {
		w = io.Discard
	}

	return &LastLineWriter{
		w:      w,
		onLine: onLine,
	}
}

// Write implements io.Writer.
func (lw *LastLineWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if n > 0 {
		lines := lw.process(p[:n])
		if lw.onLine != nil {
			for _, l := range lines {
				lw.onLine(l)
			}
		}
	}

	return n, err //nolint:wrapcheck
}

// process returns the lines completed by data. Only data is scanned.
func (lw *LastLineWriter) process(data []byte) []string {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	var lines []string

	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}

		var line string
		if len(lw.partial) > 0 {
			line = string(lw.partial) + string(data[:i])
			lw.partial = lw.partial[:0]
		} else {
			line = string(data[:i])
		}

		lines = append(lines, strings.TrimSuffix(line, "\r"))
		data = data[i+1:]
	}

	lw.partial = append(lw.partial, data...)

	if len(lw.partial) > MaxPartial {
		tail := lw.partial[len(lw.partial)-MaxPartial:]
		for len(tail) > 0 && !utf8.RuneStart(tail[0]) {
			tail = tail[1:]
		}

		lw.partial = append(make([]byte, 0, MaxPartial), tail...)
	}

	return lines
}

// Flush reports any trailing partial line as complete. Call it once the
// producer has finished writing.
func (lw *LastLineWriter) Flush() {
	lw.mu.Lock()
	rest := strings.TrimSuffix(string(lw.partial), "\r")
	lw.partial = nil
	lw.mu.Unlock()

	if rest != "" && lw.onLine != nil {
		lw.onLine(rest)
	}
}
