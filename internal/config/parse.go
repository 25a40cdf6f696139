// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const hclFileExt = ".hcl"

// IsHCL reports whether filename is decoded as HCL.
func IsHCL(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), hclFileExt)
}

// Parse decodes data by the extension of filename. Files ending in .hcl are
// HCL, everything else is YAML. env is exposed to HCL expressions as env.NAME.
func Parse(filename string, data []byte, env map[string]string) (*File, error) {
	if IsHCL(filename) {
		return ParseHCL(filename, data, env)
	}

	return ParseYAML(data)
}

// ParseYAML decodes a YAML task file. Unknown fields are rejected.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.Join(ErrParseTaskFile, err)
	}

	return &f, nil
}
