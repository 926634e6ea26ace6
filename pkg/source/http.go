// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/telekom/relayprobe/internal/helper"
	"github.com/telekom/relayprobe/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Source = (*HttpSource)(nil)

// HttpSource fetches the source text via HTTP GET.
type HttpSource struct {
	cfg HttpConfig
	// client is the primary client.
	client *http.Client
	// fallback is used once if the primary client fails on the transport level.
	fallback *http.Client
}

// NewHttpSource creates a new [HttpSource].
func NewHttpSource(cfg HttpConfig) *HttpSource {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &HttpSource{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		fallback: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newFallbackTransport(),
		},
	}
}

// newFallbackTransport returns a fresh HTTP/1.1 transport without connection reuse.
func newFallbackTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: -1,
		}).DialContext,
		DisableKeepAlives:   true,
		ForceAttemptHTTP2:   false,
		TLSNextProto:        map[string]func(string, *tls.Conn) http.RoundTripper{},
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Fetch gets the source text. Transport failures are repeated once on a
// fallback transport. The whole fetch is retried according to the retry
// configuration, client errors are not retried.
func (h *HttpSource) Fetch(ctx context.Context) (string, error) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("source.http")
	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("url.full", h.cfg.Url),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("url", h.cfg.Url)

	var text string
	err := helper.Retry(func(ctx context.Context) error {
		b, contentType, err := h.get(ctx)
		if err != nil {
			return err
		}
		text, err = decode(b, contentType)
		return helper.Permanent(err)
	}, h.cfg.RetryCfg)(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch source", "error", err)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return "", &FetchError{Source: h.cfg.Url, Err: err}
	}

	log.InfoContext(ctx, "Successfully fetched source", "size", len(text))
	span.SetAttributes(attribute.Int("source.size", len(text)))
	return text, nil
}

// get requests the source with the primary client and repeats the request
// once with the fallback client if the primary one fails without a response.
func (h *HttpSource) get(ctx context.Context) ([]byte, string, error) {
	log := logger.FromContext(ctx)

	b, contentType, err := h.do(ctx, h.client)
	if err == nil {
		return b, contentType, nil
	}

	var sErr *statusError
	if errors.As(err, &sErr) {
		if sErr.Code >= http.StatusBadRequest && sErr.Code < http.StatusInternalServerError {
			return nil, "", helper.Permanent(err)
		}
		return nil, "", err
	}
	if ctx.Err() != nil {
		return nil, "", err
	}

	log.WarnContext(ctx, "Request failed, retrying with fallback transport", "error", err)
	b, contentType, fErr := h.do(ctx, h.fallback)
	if fErr != nil {
		return nil, "", errors.Join(err, fmt.Errorf("fallback transport: %w", fErr))
	}
	return b, contentType, nil
}

// do sends a single GET request and returns the body and its content type.
func (h *HttpSource) do(ctx context.Context, client *http.Client) ([]byte, string, error) {
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.Url, http.NoBody)
	if err != nil {
		log.ErrorContext(ctx, "Could not create http GET request", "error", err)
		return nil, "", helper.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Connection", "close")
	req.Close = true

	resp, err := client.Do(req) //nolint:bodyclose // closed in defer
	if err != nil {
		return nil, "", err
	}
	defer func(Body io.ReadCloser) {
		if cErr := Body.Close(); cErr != nil {
			log.ErrorContext(ctx, "Failed to close response body", "error", cErr)
		}
	}(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.WarnContext(ctx, "Source responded with unexpected status code", "status", resp.StatusCode)
		return nil, "", &statusError{Code: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return b, resp.Header.Get("Content-Type"), nil
}
