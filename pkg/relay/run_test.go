// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/config"
	"github.com/telekom/relayprobe/pkg/output"
	"github.com/telekom/relayprobe/pkg/relay/metrics"
	"github.com/telekom/relayprobe/pkg/source"
	"gopkg.in/yaml.v3"
)

const sourceText = `# relay list
1.1.1.1:443#SG relay a
1.1.1.2:443#SG relay b
1.1.1.3:443#SG relay c
2.2.2.2 #sg #hk
3.3.3.3 #hk
3.3.3.3 #hk
4.4.4.4 #us
999.1.1.1 #jp
`

// newTestRelay returns a relay writing into a temporary directory.
func newTestRelay(t *testing.T, src source.Source, prober reachability.Prober) (*Relay, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Countries = candidates.Table{{Country: "sg", Quota: 2}, {Country: "hk", Quota: 5}}
	cfg.Output.Path = filepath.Join(dir, "relays.txt")

	return &Relay{
		config:  cfg,
		version: "test",
		source:  src,
		prober:  prober,
		writer:  output.NewWriter(cfg.Output.Path, cfg.Output.Report),
		metrics: metrics.New(cfg.Telemetry, "test"),
	}, cfg
}

func staticSource(text string) *source.SourceMock {
	return &source.SourceMock{
		FetchFunc: func(_ context.Context) (string, error) { return text, nil },
	}
}

func reachableExcept(addrs ...string) *reachability.ProberMock {
	unreachable := map[netip.Addr]bool{}
	for _, a := range addrs {
		unreachable[netip.MustParseAddr(a)] = true
	}
	return &reachability.ProberMock{
		ReachableFunc: func(_ context.Context, addr netip.Addr) bool {
			return !unreachable[addr]
		},
	}
}

func TestRelay_Run(t *testing.T) {
	r, cfg := newTestRelay(t, staticSource(sourceText), reachableExcept("1.1.1.1"))
	r.config.Probe.Workers = 1

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	b, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, "1.1.1.2:443#SG relay b\n1.1.1.3:443#SG relay c\n3.3.3.3 #hk\n", string(b))

	assert.Equal(t, ResultOK, summary.Result)
	assert.Equal(t, 5, summary.Candidates)
	assert.Equal(t, 3, summary.Written)
	assert.Equal(t, []CountrySummary{
		{Country: "SG", Quota: 2, Candidates: 4, Accepted: 2},
		{Country: "HK", Quota: 5, Candidates: 1, Accepted: 1},
	}, summary.Countries)
	assert.Positive(t, summary.Duration)
}

func TestRelay_Run_Outcomes(t *testing.T) {
	errFetch := &source.FetchError{Source: "test", Err: errors.New("connection refused")}

	tests := []struct {
		name       string
		source     *source.SourceMock
		prober     *reachability.ProberMock
		wantErr    error
		wantResult Result
		wantOutput bool
	}{
		{
			name:       "no candidates",
			source:     staticSource("4.4.4.4 #us\n#sg without address\n"),
			prober:     reachableExcept(),
			wantErr:    ErrNoCandidates,
			wantResult: ResultNoCandidates,
		},
		{
			name:       "empty source",
			source:     staticSource(""),
			prober:     reachableExcept(),
			wantErr:    ErrNoCandidates,
			wantResult: ResultNoCandidates,
		},
		{
			name:       "no reachable candidates",
			source:     staticSource(sourceText),
			prober:     reachableExcept("1.1.1.1", "1.1.1.2", "1.1.1.3", "2.2.2.2", "3.3.3.3"),
			wantErr:    ErrNoReachable,
			wantResult: ResultNoReachable,
		},
		{
			name:       "success",
			source:     staticSource(sourceText),
			prober:     reachableExcept(),
			wantResult: ResultOK,
			wantOutput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cfg := newTestRelay(t, tt.source, tt.prober)

			summary, err := r.Run(t.Context())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, summary)
			assert.Equal(t, tt.wantResult, summary.Result)

			_, statErr := os.Stat(cfg.Output.Path)
			assert.Equal(t, tt.wantOutput, statErr == nil, "output file existence")
		})
	}

	t.Run("fetch failure", func(t *testing.T) {
		src := &source.SourceMock{
			FetchFunc: func(_ context.Context) (string, error) { return "", errFetch },
		}
		prober := reachableExcept()
		r, cfg := newTestRelay(t, src, prober)

		summary, err := r.Run(t.Context())
		var fErr *source.FetchError
		require.ErrorAs(t, err, &fErr)
		assert.Nil(t, summary)
		assert.Empty(t, prober.ReachableCalls())
		assert.NoFileExists(t, cfg.Output.Path)
	})
}

func TestRelay_Run_OutputDirectoryMissing(t *testing.T) {
	src := staticSource(sourceText)
	r, cfg := newTestRelay(t, src, reachableExcept())
	cfg.Output.Path = filepath.Join(t.TempDir(), "missing", "relays.txt")
	r.writer = output.NewWriter(cfg.Output.Path)

	summary, err := r.Run(t.Context())
	var oErr *output.OutputError
	require.ErrorAs(t, err, &oErr)
	assert.Nil(t, summary)
	assert.Empty(t, src.FetchCalls(), "the source must not be fetched if the output cannot be written")
}

func TestRelay_Run_Interrupted(t *testing.T) {
	r, cfg := newTestRelay(t, staticSource(sourceText), reachableExcept())

	ctx, cancel := context.WithCancel(t.Context())
	r.source = &source.SourceMock{
		FetchFunc: func(_ context.Context) (string, error) {
			cancel()
			return sourceText, nil
		},
	}

	summary, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, ResultInterrupted, summary.Result)
	assert.NoFileExists(t, cfg.Output.Path)
}

func TestRelay_Run_Report(t *testing.T) {
	r, cfg := newTestRelay(t, staticSource(sourceText), reachableExcept())
	cfg.Output.Report = filepath.Join(filepath.Dir(cfg.Output.Path), "report.yaml")
	cfg.Telemetry.Textfile = filepath.Join(filepath.Dir(cfg.Output.Path), "relayprobe.prom")
	r.writer = output.NewWriter(cfg.Output.Path, cfg.Output.Report)
	r.metrics = metrics.New(cfg.Telemetry, "test")

	summary, err := r.Run(t.Context())
	require.NoError(t, err)

	b, err := os.ReadFile(cfg.Output.Report)
	require.NoError(t, err)
	var got Summary
	require.NoError(t, yaml.Unmarshal(b, &got))
	assert.Equal(t, summary.Result, got.Result)
	assert.Equal(t, summary.Candidates, got.Candidates)
	assert.Equal(t, summary.Written, got.Written)
	assert.Equal(t, summary.Countries, got.Countries)
	assert.Equal(t, cfg.Source.Http.Url, got.Source)

	prom, err := os.ReadFile(cfg.Telemetry.Textfile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(prom), "relayprobe_probes_total"))
	assert.True(t, strings.Contains(string(prom), "relayprobe_run_info"))
}

func TestRelay_Run_Telemetry(t *testing.T) {
	r, cfg := newTestRelay(t, staticSource(sourceText), reachableExcept())
	cfg.Telemetry.Enabled = true

	initErr := errors.New("collector unavailable")
	provider := &metrics.ProviderMock{
		InitTracingFunc: func(_ context.Context) error { return initErr },
	}
	r.metrics = provider

	summary, err := r.Run(t.Context())
	assert.ErrorIs(t, err, initErr)
	assert.Nil(t, summary)
	assert.Len(t, provider.InitTracingCalls(), 1)
	assert.Empty(t, provider.ShutdownCalls())
}

func TestRelay_Run_TelemetryShutdown(t *testing.T) {
	r, cfg := newTestRelay(t, staticSource(sourceText), reachableExcept())
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Exporter = metrics.NOOP
	r.metrics = metrics.New(cfg.Telemetry, "test")

	_, err := r.Run(t.Context())
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	r, err := New(config.Default(), "test")
	require.NoError(t, err)
	assert.IsType(t, &source.HttpSource{}, r.source)
	assert.NotNil(t, r.prober)
	assert.NotNil(t, r.metrics)

	cfg := config.Default()
	cfg.Probe.PingMode = "invalid"
	_, err = New(cfg, "test")
	assert.Error(t, err)
}
