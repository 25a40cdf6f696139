// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/stoop/internal/ctxlog"
)

// Watch monitors the signal channel and cancels on the second signal of a
// given type. It returns when ctx is done, when sigCh is closed, or after
// cancelling.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, cancelling run", "signal", sig.String())
				signal.Stop(sigCh)
				cancel()

				return
			}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, waiting for running command", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
