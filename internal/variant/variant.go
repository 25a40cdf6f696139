// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package variant maps logical variant keys to the toolchain binaries used when
// composing commands for that variant.
package variant

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DefaultKey is the variant used when a command does not name one.
const DefaultKey = "default"

var (
	// ErrUnknownVariant is returned when a variant key is not recognised.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrUnknownTool is returned when a tool role is not recognised.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidToolchain is returned when a toolchain has no key or interpreter.
	ErrInvalidToolchain = errors.New("invalid toolchain")
)

// UnknownVariantError is returned by Resolve for an unrecognised key.
type UnknownVariantError struct {
	Key   string
	Known []string
}

// Error implements the error interface.
func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s %q (known: %s)", ErrUnknownVariant, e.Key, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownVariant.
func (e *UnknownVariantError) Unwrap() error {
	return ErrUnknownVariant
}

// Tool is a toolchain role that a command can be bound to.
type Tool string

const (
	// ToolNone means the command names its own program in Args[0].
	ToolNone Tool = ""
	// ToolInterpreter runs the variant's interpreter directly.
	ToolInterpreter Tool = "interpreter"
	// ToolPip runs the variant's package installer module.
	ToolPip Tool = "pip"
	// ToolCoconut runs the compiler under test through the variant's interpreter.
	ToolCoconut Tool = "coconut"
)

// ParseTool converts a string into a Tool.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(strings.ToLower(strings.TrimSpace(s))); t {
	case ToolNone, ToolInterpreter, ToolPip, ToolCoconut:
		return t, nil
	default:
		return ToolNone, fmt.Errorf("%w: %q", ErrUnknownTool, s)
	}
}

// Toolchain is the set of binaries for one variant.
type Toolchain struct {
	Key         string
	Interpreter string
}

// Argv returns the argument prefix that invokes the given tool.
func (t Toolchain) Argv(tool Tool) ([]string, error) {
	switch tool {
	case ToolNone:
		return nil, nil
	case ToolInterpreter:
		return []string{t.Interpreter}, nil
	case ToolPip:
		return []string{t.Interpreter, "-m", "pip"}, nil
	case ToolCoconut:
		return []string{t.Interpreter, "-m", "coconut"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
}

var builtin = []Toolchain{
	{Key: DefaultKey, Interpreter: "python"},
	{Key: "py2", Interpreter: "python2"},
	{Key: "py3", Interpreter: "python3"},
	{Key: "pypy", Interpreter: "pypy"},
	{Key: "pypy3", Interpreter: "pypy3"},
}

// Resolver is a read-only lookup of toolchains by variant key.
type Resolver struct {
	toolchains map[string]Toolchain
}

// NewResolver returns a resolver holding the built-in variants plus any extra
// toolchains. Extra toolchains replace built-ins with the same key.
func NewResolver(extra ...Toolchain) (*Resolver, error) {
	r := &Resolver{toolchains: make(map[string]Toolchain, len(builtin)+len(extra))}

	for _, tc := range slices.Concat(builtin, extra) {
		if tc.Key == "" || tc.Interpreter == "" {
			return nil, fmt.Errorf("%w: key %q, interpreter %q", ErrInvalidToolchain, tc.Key, tc.Interpreter)
		}

		r.toolchains[tc.Key] = tc
	}

	return r, nil
}

// Resolve returns the toolchain for key.
func (r *Resolver) Resolve(key string) (Toolchain, error) {
	tc, ok := r.toolchains[key]
	if !ok {
		return Toolchain{}, &UnknownVariantError{Key: key, Known: r.Keys()}
	}

	return tc, nil
}

// Keys returns the known variant keys in sorted order.
func (r *Resolver) Keys() []string {
	return slices.Sorted(maps.Keys(r.toolchains))
}

// Toolchains returns every known toolchain, sorted by key.
func (r *Resolver) Toolchains() []Toolchain {
	out := make([]Toolchain, 0, len(r.toolchains))
	for _, k := range r.Keys() {
		out = append(out, r.toolchains[k])
	}

	return out
}
