// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package output writes the selected relay entries to disk.
package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/telekom/relayprobe/internal/logger"
)

// DefaultPath is the output file written when nothing is configured.
const DefaultPath = "中转ip.txt"

// fileMode is the permission of written files.
const fileMode os.FileMode = 0o644

// Config is the configuration of the output
type Config struct {
	// Path is the file the selected lines are written to
	Path string `json:"path" yaml:"path" mapstructure:"path"`
	// Report is an optional file the YAML run report is written to
	Report string `json:"report" yaml:"report" mapstructure:"report"`
}

// Validate validates the output configuration
func (c *Config) Validate(ctx context.Context) error {
	if c.Path == "" {
		logger.FromContext(ctx).ErrorContext(ctx, "The output path cannot be empty")
		return ErrInvalidOutputPath
	}
	return nil
}

// Writer writes files into pre-existing directories.
type Writer struct {
	// paths are the files the writer is going to write
	paths []string
}

// NewWriter creates a [Writer] for the given output paths. Empty paths are ignored.
func NewWriter(paths ...string) *Writer {
	w := &Writer{}
	for _, p := range paths {
		if p != "" {
			w.paths = append(w.paths, p)
		}
	}
	return w
}

// Check verifies that the directory of every output path exists.
// Directories are never created.
func (w *Writer) Check(ctx context.Context) error {
	log := logger.FromContext(ctx)
	for _, p := range w.paths {
		dir := filepath.Dir(p)
		info, err := os.Stat(dir)
		if err != nil {
			log.ErrorContext(ctx, "Output directory does not exist", "path", p, "error", err)
			return &OutputError{Path: p, Err: err}
		}
		if !info.IsDir() {
			log.ErrorContext(ctx, "Output directory is not a directory", "path", p)
			return &OutputError{Path: p, Err: fmt.Errorf("%w: %s", ErrNotADirectory, dir)}
		}
	}
	return nil
}

// Write writes one line per entry, each terminated by a newline, to path.
func (w *Writer) Write(ctx context.Context, path string, lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if err := w.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return err
	}
	logger.FromContext(ctx).InfoContext(ctx, "Successfully wrote output", "path", path, "lines", len(lines))
	return nil
}

// WriteFile atomically replaces path with b. The content is written to a
// temporary file in the same directory which is then renamed to path.
func (w *Writer) WriteFile(ctx context.Context, path string, b []byte) (err error) {
	log := logger.FromContext(ctx).With("path", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		log.ErrorContext(ctx, "Failed to create temporary file", "error", err)
		return &OutputError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			if rErr := os.Remove(tmp.Name()); rErr != nil && !errors.Is(rErr, os.ErrNotExist) {
				log.WarnContext(ctx, "Failed to remove temporary file", "file", tmp.Name(), "error", rErr)
			}
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		log.ErrorContext(ctx, "Failed to write temporary file", "error", err)
		return &OutputError{Path: path, Err: err}
	}
	if err = tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		log.ErrorContext(ctx, "Failed to set file mode", "error", err)
		return &OutputError{Path: path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		log.ErrorContext(ctx, "Failed to close temporary file", "error", err)
		return &OutputError{Path: path, Err: err}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		log.ErrorContext(ctx, "Failed to rename temporary file", "error", err)
		return &OutputError{Path: path, Err: err}
	}
	return nil
}
