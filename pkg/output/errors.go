// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOutputPath is returned when the output path is empty
	ErrInvalidOutputPath = errors.New("invalid output path")
	// ErrNotADirectory is returned when the parent of an output path is not a directory
	ErrNotADirectory = errors.New("not a directory")
)

// OutputError is returned when an output file cannot be written.
type OutputError struct {
	// Path is the path of the output file
	Path string
	// Err is the underlying error
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write output %q: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
