// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package taskgraph holds the registry of tasks and resolves the order in which
// a task and its prerequisites must run.
//
// Tasks are phony: they are never tied to file modification times. Resolution
// is a depth-first walk that visits prerequisites in declaration order, so the
// same graph always yields the same order.
package taskgraph
