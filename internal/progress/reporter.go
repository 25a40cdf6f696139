// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

var _ Reporter = (*ChannelReporter)(nil)

// ChannelReporter implements Reporter using a buffered channel.
// Events are dropped rather than blocking the runner when the buffer is full.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer size.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report sends the event without blocking. Events sent after Close, after the
// parent context is done, or while the buffer is full are dropped.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed || cr.ctx.Err() != nil {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// Close closes the channel and waits for any listener to drain it.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()
	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
	cr.cancel()
}

// Listen forwards events to listener on a new goroutine until the reporter is
// closed. Events already buffered at Close are still delivered.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for event := range cr.ch {
			listener.OnEvent(event)
		}
	}()
}

// Events returns a read-only channel of progress events.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

// Context returns the reporter's context, cancelled once the reporter is closed.
func (cr *ChannelReporter) Context() context.Context {
	return cr.ctx
}
