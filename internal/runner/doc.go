// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes a task and its prerequisites from a taskgraph.Graph.
//
// Tasks run strictly one at a time in resolved order, and commands within a
// task run in declared order. A failing command stops the run unless it is
// marked best-effort, in which case the failure is recorded as a warning.
// Cancellation is checked between tasks; a running process has interrupt
// signals forwarded to it and is killed when the context is cancelled.
package runner
