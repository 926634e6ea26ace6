// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package source fetches the text of the relay list.
package source

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// Source provides the raw text of the relay list.
//
//go:generate go tool moq -out source_moq.go . Source
type Source interface {
	// Fetch returns the decoded source text.
	// Every returned error wraps a [*FetchError].
	Fetch(ctx context.Context) (string, error)
}

// New returns the source selected by the configuration type.
func New(cfg Config) (Source, error) {
	switch cfg.Type {
	case TypeHttp:
		return NewHttpSource(cfg.Http), nil
	case TypeFile:
		return NewFileSource(cfg.File), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSourceType, cfg.Type)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts the raw bytes to text. It uses the charset of the
// content type if it is known and decodes the bytes, otherwise UTF-8 if the
// bytes are valid UTF-8 and Latin-1 as the last resort.
func decode(b []byte, contentType string) (string, error) {
	if label := charsetParam(contentType); label != "" {
		if enc, name := charset.Lookup(label); enc != nil {
			if name == "utf-8" {
				if utf8.Valid(b) {
					return string(bytes.TrimPrefix(b, utf8BOM)), nil
				}
			} else if text, err := enc.NewDecoder().Bytes(b); err == nil {
				return string(text), nil
			}
		}
	}

	if utf8.Valid(b) {
		return string(bytes.TrimPrefix(b, utf8BOM)), nil
	}

	text, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode source: %w", err)
	}
	return string(text), nil
}

// charsetParam returns the charset parameter of a content type.
func charsetParam(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
