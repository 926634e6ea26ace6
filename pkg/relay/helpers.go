// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/telekom/relayprobe/internal/logger"
	"github.com/telekom/relayprobe/pkg/source"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	msg = fmt.Sprintf(msg, args...)

	log.ErrorContext(ctx, capitalize(msg), "error", err)
	span.SetStatus(codes.Error, msg)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", msg, err)
}

// capitalize upper-cases the first letter of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return cases.Upper(language.English).String(string(r)) + s[size:]
}

// sourceName returns the url or path of the configured source.
func sourceName(cfg source.Config) string {
	if cfg.Type == source.TypeFile {
		return cfg.File.Path
	}
	return cfg.Http.Url
}
