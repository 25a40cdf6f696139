// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cleanup deletes a fixed, declared set of generated artifacts below a
// workspace root.
//
// Clean is idempotent: paths that are already gone are ignored. Symbolic links
// are removed as links and never followed.
package cleanup
