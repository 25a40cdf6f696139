// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries real-time task and command events from the runner
// to the terminal UI.
package progress
