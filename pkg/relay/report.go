// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/scheduler"
	"gopkg.in/yaml.v3"
)

// Result is the outcome of a run
type Result string

const (
	// ResultOK means at least one candidate was written
	ResultOK Result = "ok"
	// ResultNoCandidates means the source contained no candidates
	ResultNoCandidates Result = "no-candidates"
	// ResultNoReachable means no candidate was accepted
	ResultNoReachable Result = "no-reachable"
	// ResultInterrupted means the run was canceled before it finished
	ResultInterrupted Result = "interrupted"
)

// Summary describes a finished run
type Summary struct {
	// Source is the url or path of the source
	Source string `json:"source" yaml:"source"`
	// Output is the path of the output file
	Output string `json:"output" yaml:"output"`
	// Result is the outcome of the run
	Result Result `json:"result" yaml:"result"`
	// Candidates is the number of extracted candidates
	Candidates int `json:"candidates" yaml:"candidates"`
	// Probed is the number of completed probes
	Probed int `json:"probed" yaml:"probed"`
	// Written is the number of lines written to the output
	Written int `json:"written" yaml:"written"`
	// Countries holds the per-country numbers in priority order
	Countries []CountrySummary `json:"countries" yaml:"countries"`
	// StartedAt is the start time of the run
	StartedAt time.Time `json:"startedAt" yaml:"startedAt"`
	// Duration is the duration of the run
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// CountrySummary holds the numbers of one country
type CountrySummary struct {
	Country    string `json:"country" yaml:"country"`
	Quota      int    `json:"quota" yaml:"quota"`
	Candidates int    `json:"candidates" yaml:"candidates"`
	Accepted   int    `json:"accepted" yaml:"accepted"`
}

// newSummary creates a summary with an entry for every country of the table.
func newSummary(src, out string, table candidates.Table, startedAt time.Time) *Summary {
	s := &Summary{
		Source:    src,
		Output:    out,
		Countries: make([]CountrySummary, 0, len(table)),
		StartedAt: startedAt,
	}
	for _, q := range table {
		s.Countries = append(s.Countries, CountrySummary{
			Country: q.Country.String(),
			Quota:   q.Quota,
		})
	}
	return s
}

// setCandidates counts the candidates per country.
func (s *Summary) setCandidates(cands []candidates.Candidate) {
	s.Candidates = len(cands)
	for i := range s.Countries {
		s.Countries[i].Candidates = 0
	}
	for _, c := range cands {
		if cs := s.country(c.Country); cs != nil {
			cs.Candidates++
		}
	}
}

// setResults sets the accepted candidates per country.
func (s *Summary) setResults(results scheduler.Results, probed int) {
	s.Probed = probed
	for c, accepted := range results {
		if cs := s.country(c); cs != nil {
			cs.Accepted = len(accepted)
		}
	}
}

func (s *Summary) country(c candidates.Country) *CountrySummary {
	for i := range s.Countries {
		if s.Countries[i].Country == c.String() {
			return &s.Countries[i]
		}
	}
	return nil
}

// Yaml returns the YAML representation of the summary
func (s *Summary) Yaml() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return b, nil
}

// writeReport writes the summary to the configured report file.
func (r *Relay) writeReport(ctx context.Context, s *Summary) error {
	if !r.config.HasReport() {
		return nil
	}
	b, err := s.Yaml()
	if err != nil {
		return wrapError(ctx, err, "failed to create report")
	}
	if err := r.writer.WriteFile(ctx, r.config.Output.Report, b); err != nil {
		return wrapError(ctx, err, "failed to write report")
	}
	return nil
}
