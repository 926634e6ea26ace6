// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package relay runs the relay selection pipeline: it fetches the source,
// extracts the candidates, probes them and writes the reachable ones.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/telekom/relayprobe/internal/logger"
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/config"
	"github.com/telekom/relayprobe/pkg/output"
	"github.com/telekom/relayprobe/pkg/relay/metrics"
	"github.com/telekom/relayprobe/pkg/scheduler"
	"github.com/telekom/relayprobe/pkg/source"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = time.Second * 10

// Relay is the main struct of the relayprobe application
type Relay struct {
	// config is the startup configuration
	config *config.Config
	// version is the version of the binary
	version string
	// source provides the relay list
	source source.Source
	// prober checks the reachability of a single candidate
	prober reachability.Prober
	// writer writes the output and report files
	writer *output.Writer
	// metrics is used to collect metrics
	metrics metrics.Provider
}

// New creates a new relay pipeline from a validated configuration
func New(cfg *config.Config, version string) (*Relay, error) {
	src, err := source.New(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	prober, err := reachability.NewProber(cfg.Probe.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create prober: %w", err)
	}

	return &Relay{
		config:  cfg,
		version: version,
		source:  src,
		prober:  prober,
		writer:  output.NewWriter(cfg.Output.Path, cfg.Output.Report),
		metrics: metrics.New(cfg.Telemetry, version),
	}, nil
}

// Run executes the pipeline once.
//
// A [*source.FetchError] or [*output.OutputError] is returned if the source
// cannot be fetched or a file cannot be written. [ErrNoCandidates] and
// [ErrNoReachable] are returned together with the summary if there is
// nothing to write. The output file is only written if at least one
// candidate was accepted.
func (r *Relay) Run(ctx context.Context) (summary *Summary, err error) {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)
	start := time.Now()

	if r.config.HasTelemetry() {
		if err = r.metrics.InitTracing(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer r.shutdown(ctx)
	}

	ctx, span := otel.Tracer("relayprobe").Start(ctx, "Run", trace.WithAttributes(
		attribute.String("relayprobe.source", sourceName(r.config.Source)),
		attribute.String("relayprobe.output", r.config.Output.Path),
	))
	defer span.End()

	if err = r.writer.Check(ctx); err != nil {
		return nil, wrapError(ctx, err, "output directory check failed")
	}

	text, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, wrapError(ctx, err, "failed to fetch source")
	}

	table := r.config.Countries
	summary = newSummary(sourceName(r.config.Source), r.config.Output.Path, table, start)
	defer func() {
		summary.Duration = time.Since(start)
		if rErr := r.writeReport(ctx, summary); rErr != nil {
			err = errors.Join(err, rErr)
		}
		if mErr := r.metrics.WriteTextfile(ctx); mErr != nil {
			log.WarnContext(ctx, "Failed to export metrics", "error", mErr)
		}
	}()

	cands := candidates.Extract(text, table)
	summary.setCandidates(cands)
	span.SetAttributes(attribute.Int("relayprobe.candidates", len(cands)))
	log.InfoContext(ctx, "Extracted candidates", "candidates", len(cands))
	if len(cands) == 0 {
		log.WarnContext(ctx, "No candidates found in source")
		summary.Result = ResultNoCandidates
		return summary, ErrNoCandidates
	}

	sched := scheduler.New(r.prober, table, r.config.Probe.Workers)
	r.registerCollectors(ctx, sched)

	results, probed := sched.Run(ctx, cands)
	summary.setResults(results, probed)
	if err = ctx.Err(); err != nil {
		log.WarnContext(ctx, "Run interrupted, discarding results", "probed", probed)
		span.SetStatus(codes.Error, "interrupted")
		summary.Result = ResultInterrupted
		return summary, fmt.Errorf("run interrupted: %w", err)
	}

	for _, c := range summary.Countries {
		log.InfoContext(ctx, "Country finished", "country", c.Country, "accepted", c.Accepted, "quota", c.Quota, "candidates", c.Candidates)
	}

	lines := scheduler.Assemble(results, table)
	if len(lines) == 0 {
		log.WarnContext(ctx, "No reachable candidates found", "probed", probed)
		summary.Result = ResultNoReachable
		return summary, ErrNoReachable
	}

	if err = r.writer.Write(ctx, r.config.Output.Path, lines); err != nil {
		return summary, wrapError(ctx, err, "failed to write output")
	}
	summary.Written = len(lines)
	summary.Result = ResultOK
	span.SetAttributes(attribute.Int("relayprobe.written", len(lines)))
	log.InfoContext(ctx, "Run finished", "written", len(lines), "probed", probed, "duration", time.Since(start))
	return summary, nil
}

// registerCollectors registers the scheduler and run info collectors.
// Registration errors only affect the exported metrics and are logged.
func (r *Relay) registerCollectors(ctx context.Context, sched *scheduler.Scheduler) {
	log := logger.FromContext(ctx)
	registry := r.metrics.GetRegistry()

	for _, c := range sched.Collectors() {
		if err := registry.Register(c); err != nil {
			log.WarnContext(ctx, "Failed to register collector", "error", err)
		}
	}
	if err := metrics.RegisterRunInfo(registry, r.version, sourceName(r.config.Source), r.config.Output.Path); err != nil {
		log.WarnContext(ctx, "Failed to register run info", "error", err)
	}
}

// shutdown flushes the traces. It is bounded by its own timeout so that it
// also runs after the run context was canceled.
func (r *Relay) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := r.metrics.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown gracefully", "error", err)
	}
}
