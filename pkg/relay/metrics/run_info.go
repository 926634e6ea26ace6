// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	runInfoMetricName = "relayprobe_run_info"
	runInfoHelp       = "Static information about the relayprobe run. Always 1."
)

// RegisterRunInfo registers the relayprobe_run_info info-style metric on the given registry.
// It sets the gauge to 1 with labels version, source and output.
func RegisterRunInfo(registry prometheus.Registerer, version, source, output string) error {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: runInfoMetricName,
			Help: runInfoHelp,
		},
		[]string{"version", "source", "output"},
	)
	info.WithLabelValues(version, source, output).Set(1)
	return registry.Register(info)
}
