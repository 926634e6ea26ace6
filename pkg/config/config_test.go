// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/output"
	"github.com/telekom/relayprobe/pkg/relay/metrics"
	"github.com/telekom/relayprobe/pkg/source"
	"gopkg.in/yaml.v3"
)

// testdataConfig returns the configuration of testdata/config.yaml.
func testdataConfig() *Config {
	want := Default()
	want.Source.Type = source.TypeFile
	want.Source.File.Path = "/var/lib/relayprobe/all.txt"
	want.Countries = candidates.Table{{Country: "jp", Quota: 10}, {Country: "sg", Quota: 5}}
	want.Probe = ProbeConfig{
		Workers: 16,
		Options: reachability.Options{
			PingMode:    reachability.PingModeExec,
			PingTimeout: 1500 * time.Millisecond,
			TCPTimeout:  750 * time.Millisecond,
			Ports:       []int{443},
		},
	}
	want.Output = output.Config{
		Path:   "/var/lib/relayprobe/relays.txt",
		Report: "/var/lib/relayprobe/report.yaml",
	}
	want.Telemetry = metrics.Config{
		Enabled:  true,
		Exporter: metrics.GRPC,
		Url:      "http://otel-collector:4317",
		Textfile: "/var/lib/node_exporter/relayprobe.prom",
	}
	return want
}

func TestConfig_Yaml(t *testing.T) {
	b, err := os.ReadFile("testdata/config.yaml")
	require.NoError(t, err)

	got := Default()
	require.NoError(t, yaml.Unmarshal(b, got))

	want := testdataConfig()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, got.Validate(t.Context()))
	assert.True(t, got.HasTelemetry())
	assert.True(t, got.HasReport())
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate(t.Context()))

	assert.Equal(t, source.DefaultURL, cfg.Source.Http.Url)
	assert.Equal(t, 8, cfg.Probe.Workers)
	assert.Equal(t, reachability.DefaultOptions(), cfg.Probe.Options)
	assert.Equal(t, "中转ip.txt", cfg.Output.Path)
	assert.False(t, cfg.HasTelemetry())
	assert.False(t, cfg.HasReport())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr []error
	}{
		{
			name:   "default",
			modify: func(_ *Config) {},
		},
		{
			name:    "invalid source",
			modify:  func(c *Config) { c.Source.Http.Url = "" },
			wantErr: []error{source.ErrInvalidSourceHttpURL},
		},
		{
			name:    "no countries",
			modify:  func(c *Config) { c.Countries = nil },
			wantErr: []error{ErrInvalidCountries},
		},
		{
			name:    "no workers",
			modify:  func(c *Config) { c.Probe.Workers = 0 },
			wantErr: []error{ErrInvalidWorkers},
		},
		{
			name:    "invalid probe options",
			modify:  func(c *Config) { c.Probe.PingMode = "telepathy" },
			wantErr: []error{ErrInvalidProbeOptions},
		},
		{
			name:    "empty output path",
			modify:  func(c *Config) { c.Output.Path = "" },
			wantErr: []error{output.ErrInvalidOutputPath},
		},
		{
			name:    "report overwrites output",
			modify:  func(c *Config) { c.Output.Report = "./" + c.Output.Path },
			wantErr: []error{ErrConflictingPaths},
		},
		{
			name: "invalid telemetry is ignored when disabled",
			modify: func(c *Config) {
				c.Telemetry.Exporter = metrics.HTTP
			},
		},
		{
			name: "invalid telemetry",
			modify: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Exporter = metrics.HTTP
			},
			wantErr: []error{},
		},
		{
			name: "all violations are reported",
			modify: func(c *Config) {
				c.Probe.Workers = -1
				c.Countries = candidates.Table{{Country: "sg", Quota: -1}}
				c.Output.Path = ""
			},
			wantErr: []error{ErrInvalidWorkers, ErrInvalidCountries, output.ErrInvalidOutputPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate(t.Context())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}
