// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/relayprobe/pkg/candidates"
)

const (
	resultReachable   = "reachable"
	resultUnreachable = "unreachable"
)

// metrics defines the metric collectors of the scheduler
type metrics struct {
	probes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	accepted *prometheus.GaugeVec
}

// newMetrics initializes metric collectors of the scheduler
func newMetrics() metrics {
	return metrics{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relayprobe_probes_total",
				Help: "Total number of completed reachability probes by country and result.",
			},
			[]string{"country", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relayprobe_probe_duration_seconds",
				Help:    "Histogram of reachability probe durations in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 2.5, 3, 3.5, 4},
			},
			[]string{"country"},
		),
		accepted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relayprobe_accepted",
				Help: "Number of reachable candidates accepted per country in the last run.",
			},
			[]string{"country"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.probes,
		m.duration,
		m.accepted,
	}
}

// observe records one completed probe
func (m *metrics) observe(c candidates.Country, reachable bool, d time.Duration) {
	result := resultUnreachable
	if reachable {
		result = resultReachable
	}
	m.probes.WithLabelValues(string(c), result).Inc()
	m.duration.WithLabelValues(string(c)).Observe(d.Seconds())
}

// setAccepted sets the accepted count of a country
func (m *metrics) setAccepted(c candidates.Country, n int) {
	m.accepted.WithLabelValues(string(c)).Set(float64(n))
}
