// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a writer that passes output straight through
// while reporting each complete line, so long running commands can show progress
// without buffering their whole output.
package teereader
