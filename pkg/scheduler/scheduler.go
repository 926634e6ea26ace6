// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package scheduler probes candidates concurrently and selects the reachable
// ones up to the quota of their country.
package scheduler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/relayprobe/internal/logger"
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of probes in flight when nothing is configured.
const DefaultWorkers = 8

// Results holds the accepted candidates per country.
// Before [Assemble] the candidates are in completion order.
type Results map[candidates.Country][]candidates.Candidate

// Count returns the number of accepted candidates of a country.
func (r Results) Count(c candidates.Country) int {
	return len(r[c])
}

// Total returns the number of accepted candidates of all countries.
func (r Results) Total() int {
	total := 0
	for _, accepted := range r {
		total += len(accepted)
	}
	return total
}

// outcome is the result of one completed probe.
type outcome struct {
	candidate candidates.Candidate
	reachable bool
}

// Scheduler dispatches reachability probes over a bounded worker pool and
// applies the country quotas to their outcomes.
type Scheduler struct {
	prober  reachability.Prober
	table   candidates.Table
	workers int
	metrics metrics
}

// New creates a [Scheduler]. A worker count below 1 is raised to 1.
func New(prober reachability.Prober, table candidates.Table, workers int) *Scheduler {
	return &Scheduler{
		prober:  prober,
		table:   table,
		workers: max(workers, 1),
		metrics: newMetrics(),
	}
}

// Collectors returns the metric collectors of the scheduler.
func (s *Scheduler) Collectors() []prometheus.Collector {
	return s.metrics.GetCollectors()
}

// Run probes the candidates in order with at most the configured number of
// probes in flight. A reachable candidate is accepted if its country's quota
// is not yet met, otherwise it is discarded.
//
// Run returns as soon as every quota is met without waiting for the probes
// still in flight, whose outcomes are discarded. Otherwise it returns once
// all probes completed. The second return value is the number of probes
// whose outcome was collected.
func (s *Scheduler) Run(ctx context.Context, cands []candidates.Candidate) (Results, int) {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("scheduler")
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.Int("scheduler.candidates", len(cands)),
	))
	defer span.End()
	log := logger.FromContext(ctx)

	results := Results{}
	for _, q := range s.table {
		s.metrics.setAccepted(q.Country, 0)
	}
	if len(cands) == 0 || s.satisfied(results) {
		log.DebugContext(ctx, "Nothing to probe", "candidates", len(cands))
		return results, 0
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(s.workers, len(cands))
	span.SetAttributes(attribute.Int("scheduler.workers", workers))
	outcomes := make(chan outcome)
	go s.dispatch(ctx, cands, workers, outcomes)

	completed := 0
	for o := range outcomes {
		completed++
		if !o.reachable {
			continue
		}

		quota, _ := s.table.Quota(o.candidate.Country)
		if results.Count(o.candidate.Country) >= quota {
			log.DebugContext(ctx, "Quota met, discarding reachable candidate", "country", o.candidate.Country.String(), "addr", o.candidate.Addr.String())
			continue
		}
		results[o.candidate.Country] = append(results[o.candidate.Country], o.candidate)
		s.metrics.setAccepted(o.candidate.Country, results.Count(o.candidate.Country))
		log.DebugContext(ctx, "Accepted candidate", "country", o.candidate.Country.String(), "addr", o.candidate.Addr.String())

		if s.satisfied(results) {
			log.InfoContext(ctx, "All quotas met, abandoning outstanding probes", "completed", completed)
			span.AddEvent("All quotas met")
			cancel()
			break
		}
	}

	span.SetAttributes(
		attribute.Int("scheduler.completed", completed),
		attribute.Int("scheduler.accepted", results.Total()),
	)
	return results, completed
}

// dispatch starts one probe per candidate in order until ctx is canceled.
// It closes outcomes once every started probe returned.
func (s *Scheduler) dispatch(ctx context.Context, cands []candidates.Candidate, workers int, outcomes chan<- outcome) {
	defer close(outcomes)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, c := range cands {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			reachable := s.prober.Reachable(ctx, c.Addr)
			s.metrics.observe(c.Country, reachable, time.Since(start))

			select {
			case outcomes <- outcome{candidate: c, reachable: reachable}:
			case <-ctx.Done():
			}
			return nil
		})
	}
	_ = g.Wait()
}

// satisfied reports whether the quota of every country is met.
func (s *Scheduler) satisfied(results Results) bool {
	for _, q := range s.table {
		if results.Count(q.Country) < q.Quota {
			return false
		}
	}
	return true
}
