// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestWatch_FirstSignalNoCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()
	sigCh <- os.Interrupt

	time.Sleep(50 * time.Millisecond)
	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled after first signal")
	default:
	}

	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal, 2)

	done := make(chan struct{})

	go func() {
		defer close(done)
		Watch(ctx, sigCh, cancel)
	}()
	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not return after second signal")
	}

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestWatch_DifferentSignalsNoCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()
	sigCh <- os.Interrupt
	sigCh <- syscall.SIGTERM

	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, ctx.Err())

	cancel()
	wg.Wait()
}

func TestNewAndStop(t *testing.T) {
	ctx := context.Background()
	ch := New(ctx, syscall.SIGUSR1)
	assert.Equal(t, 1, cap(ch))
	Stop(ctx, ch)

	Stop(ctx, New(ctx))
}
