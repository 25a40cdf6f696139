// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cleanup

import (
	"errors"
	"fmt"
)

var (
	// ErrFilesystem is matched by every *FilesystemError.
	ErrFilesystem = errors.New("filesystem error")
	// ErrOutsideRoot is returned for targets that are absolute or escape the root.
	ErrOutsideRoot = errors.New("cleanup target outside root")
	// ErrInvalidTarget is returned for targets that set zero or several of Path, Glob and Name.
	ErrInvalidTarget = errors.New("invalid cleanup target")
	// ErrNoRoot is returned when a manager has no root directory.
	ErrNoRoot = errors.New("cleanup root must not be empty")
)

// FilesystemError is a genuine failure to inspect or remove a target.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrFilesystem, e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFilesystem) true while still unwrapping to the cause.
func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}
