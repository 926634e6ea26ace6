// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
)

// newCandidates returns n candidates of country c starting at index offset.
func newCandidates(c candidates.Country, offset, n int) []candidates.Candidate {
	cands := make([]candidates.Candidate, 0, n)
	for i := range n {
		idx := offset + i
		addr := netip.AddrFrom4([4]byte{10, byte(idx >> 8), byte(idx), 1})
		cands = append(cands, candidates.Candidate{
			Index:   idx,
			Line:    fmt.Sprintf("%s #%s", addr, c),
			Country: c,
			Addr:    addr,
		})
	}
	return cands
}

// reachableSet returns a prober mock that reports only the given addresses as reachable.
func reachableSet(addrs ...netip.Addr) *reachability.ProberMock {
	set := map[netip.Addr]bool{}
	for _, a := range addrs {
		set[a] = true
	}
	return &reachability.ProberMock{
		ReachableFunc: func(_ context.Context, addr netip.Addr) bool {
			return set[addr]
		},
	}
}

func alwaysReachable() *reachability.ProberMock {
	return &reachability.ProberMock{
		ReachableFunc: func(_ context.Context, _ netip.Addr) bool { return true },
	}
}

func TestScheduler_Run(t *testing.T) {
	sg := newCandidates("sg", 0, 3)
	hk := newCandidates("hk", 3, 3)

	tests := []struct {
		name          string
		table         candidates.Table
		cands         []candidates.Candidate
		prober        *reachability.ProberMock
		want          []string
		wantCompleted int
	}{
		{
			name:          "skips unreachable candidates",
			table:         candidates.Table{{Country: "sg", Quota: 2}},
			cands:         sg,
			prober:        reachableSet(sg[1].Addr, sg[2].Addr),
			want:          []string{sg[1].Line, sg[2].Line},
			wantCompleted: 3,
		},
		{
			name:          "nothing reachable",
			table:         candidates.Table{{Country: "sg", Quota: 2}},
			cands:         sg,
			prober:        reachableSet(),
			want:          []string{},
			wantCompleted: 3,
		},
		{
			name:          "quota zero never accepts",
			table:         candidates.Table{{Country: "sg", Quota: 0}, {Country: "hk", Quota: 5}},
			cands:         append(append([]candidates.Candidate{}, sg...), hk...),
			prober:        alwaysReachable(),
			want:          []string{hk[0].Line, hk[1].Line, hk[2].Line},
			wantCompleted: 6,
		},
		{
			name:          "no candidates",
			table:         candidates.DefaultTable(),
			cands:         nil,
			prober:        alwaysReachable(),
			want:          []string{},
			wantCompleted: 0,
		},
		{
			name:          "all quotas zero",
			table:         candidates.Table{{Country: "sg", Quota: 0}},
			cands:         sg,
			prober:        alwaysReachable(),
			want:          []string{},
			wantCompleted: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.prober, tt.table, DefaultWorkers)
			results, completed := s.Run(t.Context(), tt.cands)

			assert.Equal(t, tt.want, Assemble(results, tt.table))
			assert.Equal(t, tt.wantCompleted, completed)
			assert.Len(t, tt.prober.ReachableCalls(), tt.wantCompleted)
		})
	}
}

func TestScheduler_Run_QuotaNeverExceeded(t *testing.T) {
	cands := append(newCandidates("sg", 0, 40), newCandidates("hk", 40, 40)...)
	table := candidates.Table{{Country: "sg", Quota: 3}, {Country: "hk", Quota: 100}}

	for range 20 {
		s := New(alwaysReachable(), table, 8)
		results, _ := s.Run(t.Context(), cands)
		assert.Equal(t, 3, results.Count("sg"))
		assert.Equal(t, 40, results.Count("hk"))
	}
}

func TestScheduler_Run_Idempotent(t *testing.T) {
	cands := append(newCandidates("hk", 0, 5), newCandidates("sg", 5, 5)...)
	table := candidates.Table{{Country: "sg", Quota: 2}, {Country: "hk", Quota: 3}}

	var first []string
	for i := range 5 {
		s := New(alwaysReachable(), table, 1)
		results, _ := s.Run(t.Context(), cands)
		lines := Assemble(results, table)

		require.Len(t, lines, 5)
		if i == 0 {
			first = lines
			continue
		}
		assert.Equal(t, first, lines)
	}
	assert.Equal(t, []string{cands[5].Line, cands[6].Line, cands[0].Line, cands[1].Line, cands[2].Line}, first)
}

func TestScheduler_Run_BoundedConcurrency(t *testing.T) {
	const workers = 4
	var inFlight, maxInFlight atomic.Int32

	prober := &reachability.ProberMock{
		ReachableFunc: func(_ context.Context, _ netip.Addr) bool {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return false
		},
	}

	cands := newCandidates("sg", 0, 50)
	s := New(prober, candidates.Table{{Country: "sg", Quota: 1}}, workers)
	_, completed := s.Run(t.Context(), cands)

	assert.Equal(t, 50, completed)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(workers))
	assert.Positive(t, maxInFlight.Load())
}

func TestScheduler_Run_EarlyTermination(t *testing.T) {
	cands := newCandidates("sg", 0, 10)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	prober := &reachability.ProberMock{
		ReachableFunc: func(_ context.Context, addr netip.Addr) bool {
			if addr == cands[0].Addr {
				return true
			}
			// Slow probes ignore cancellation and must not be awaited.
			<-release
			return true
		},
	}

	s := New(prober, candidates.Table{{Country: "sg", Quota: 1}}, 4)

	type result struct {
		results   Results
		completed int
	}
	done := make(chan result, 1)
	go func() {
		r, c := s.Run(t.Context(), cands)
		done <- result{results: r, completed: c}
	}()

	select {
	case r := <-done:
		assert.Equal(t, 1, r.completed)
		assert.Equal(t, []string{cands[0].Line}, Assemble(r.results, candidates.Table{{Country: "sg", Quota: 1}}))
	case <-time.After(5 * time.Second):
		t.Fatal("Run waited for outstanding probes after all quotas were met")
	}
	assert.LessOrEqual(t, len(prober.ReachableCalls()), 4)
}

func TestScheduler_Run_CancelsOutstandingProbes(t *testing.T) {
	cands := newCandidates("sg", 0, 3)
	var started, wg sync.WaitGroup
	started.Add(2)
	wg.Add(2)

	prober := &reachability.ProberMock{
		ReachableFunc: func(ctx context.Context, addr netip.Addr) bool {
			if addr == cands[0].Addr {
				started.Wait()
				return true
			}
			defer wg.Done()
			started.Done()
			<-ctx.Done()
			return false
		},
	}

	s := New(prober, candidates.Table{{Country: "sg", Quota: 1}}, 3)
	results, completed := s.Run(t.Context(), cands)
	assert.Equal(t, 1, results.Total())
	assert.Equal(t, 1, completed)

	// The outstanding probes observe the cancellation.
	wg.Wait()
}

func TestScheduler_Run_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	prober := alwaysReachable()
	s := New(prober, candidates.DefaultTable(), DefaultWorkers)
	results, completed := s.Run(ctx, newCandidates("sg", 0, 5))

	assert.Equal(t, 0, results.Total())
	assert.Equal(t, 0, completed)
	assert.Empty(t, prober.ReachableCalls())
}

func TestScheduler_Metrics(t *testing.T) {
	cands := newCandidates("sg", 0, 4)
	s := New(reachableSet(cands[0].Addr, cands[1].Addr), candidates.Table{{Country: "sg", Quota: 5}}, 2)

	registry := prometheus.NewRegistry()
	registry.MustRegister(s.Collectors()...)

	_, completed := s.Run(t.Context(), cands)
	require.Equal(t, 4, completed)

	families, err := registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += lp.GetName() + "=" + lp.GetValue() + ","
			}
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()+"{"+labels+"}"] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()+"{"+labels+"}"] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()+"{"+labels+"}"] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, 2.0, values["relayprobe_probes_total{country=sg,result=reachable,}"])
	assert.Equal(t, 2.0, values["relayprobe_probes_total{country=sg,result=unreachable,}"])
	assert.Equal(t, 4.0, values["relayprobe_probe_duration_seconds{country=sg,}"])
	assert.Equal(t, 2.0, values["relayprobe_accepted{country=sg,}"])
}

func TestNew_MinimumWorkers(t *testing.T) {
	s := New(alwaysReachable(), candidates.DefaultTable(), 0)
	assert.Equal(t, 1, s.workers)
}
