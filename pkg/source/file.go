// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/telekom/relayprobe/internal/logger"
)

var _ Source = (*FileSource)(nil)

// FileSource reads the source text from a local file.
type FileSource struct {
	cfg  FileConfig
	fsys fs.FS
}

// NewFileSource creates a new [FileSource].
func NewFileSource(cfg FileConfig) *FileSource {
	return &FileSource{
		cfg:  cfg,
		fsys: os.DirFS(filepath.Dir(cfg.Path)),
	}
}

// Fetch reads and decodes the file.
func (f *FileSource) Fetch(ctx context.Context) (string, error) {
	text, err := f.read(ctx)
	if err != nil {
		return "", &FetchError{Source: f.cfg.Path, Err: err}
	}
	return text, nil
}

func (f *FileSource) read(ctx context.Context) (text string, err error) {
	log := logger.FromContext(ctx).With("path", f.cfg.Path)
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := f.fsys.Open(filepath.Base(f.cfg.Path))
	if err != nil {
		log.ErrorContext(ctx, "Failed to open source file", "error", err)
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() {
		cerr := file.Close()
		if cerr != nil {
			log.ErrorContext(ctx, "Failed to close source file", "error", cerr)
		}
		err = errors.Join(cerr, err)
	}()

	b, err := io.ReadAll(file)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read source file", "error", err)
		return "", fmt.Errorf("failed to read source file: %w", err)
	}

	text, err = decode(b, "")
	if err != nil {
		return "", err
	}
	log.InfoContext(ctx, "Successfully read source file", "size", len(text))
	return text, nil
}
