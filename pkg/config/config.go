// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/relayprobe/internal/reachability"
	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/output"
	"github.com/telekom/relayprobe/pkg/relay/metrics"
	"github.com/telekom/relayprobe/pkg/scheduler"
	"github.com/telekom/relayprobe/pkg/source"
)

type Config struct {
	// Source is the configuration for the relay list source
	Source source.Config `json:"source" yaml:"source" mapstructure:"source"`
	// Countries are the country quotas in priority order
	Countries candidates.Table `json:"countries" yaml:"countries" mapstructure:"countries"`
	// Probe is the configuration for the reachability probes
	Probe ProbeConfig `json:"probe" yaml:"probe" mapstructure:"probe"`
	// Output is the configuration for the written files
	Output output.Config `json:"output" yaml:"output" mapstructure:"output"`
	// Telemetry is the configuration for the telemetry
	Telemetry metrics.Config `json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`
}

// ProbeConfig is the configuration for the probe scheduler and the prober
type ProbeConfig struct {
	// Workers is the maximum number of probes in flight
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
	// Options configures the single probe
	reachability.Options `json:",inline" yaml:",inline" mapstructure:",squash"`
}

// Default returns the configuration used for every value that is not configured.
func Default() *Config {
	return &Config{
		Source:    source.DefaultConfig(),
		Countries: candidates.DefaultTable(),
		Probe: ProbeConfig{
			Workers: scheduler.DefaultWorkers,
			Options: reachability.DefaultOptions(),
		},
		Output: output.Config{
			Path: output.DefaultPath,
		},
		Telemetry: metrics.Config{
			Exporter: metrics.NOOP,
		},
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasReport returns true if a run report should be written
func (c *Config) HasReport() bool {
	return c.Output.Report != ""
}
