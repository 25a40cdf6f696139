// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger on a context.Context.
//
// The default is a pretty console handler on stderr. The level is read once
// from STOOP_LOG_LEVEL and shared through LevelVar.
package ctxlog
