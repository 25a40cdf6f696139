// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a live terminal view of a run. It shows each task with
// its commands, a spinner for whatever is running and the last output line of
// the running command.
package tui
