// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads task files and builds a runnable project from them.
//
// Task files are YAML or HCL documents declaring variants, cleanup managers,
// tasks and per-variant task templates. Files may be local paths or any
// go-getter URL.
package config
