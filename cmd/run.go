// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/relayprobe/internal/logger"
	"github.com/telekom/relayprobe/pkg/candidates"
	"github.com/telekom/relayprobe/pkg/config"
	"github.com/telekom/relayprobe/pkg/output"
	"github.com/telekom/relayprobe/pkg/relay"
)

// countryFlag is the repeatable flag replacing the configured quota table
const countryFlag = "country"

// NewCmdRun creates a new run command
func NewCmdRun(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run relayprobe once",
		Long: "Fetches the relay list, probes the tagged candidates and writes the\n" +
			"reachable ones per country into the output file.",
		RunE: run(version),
	}

	def := config.Default()

	NewFlag("source.type", "sourceType").String().Bind(cmd, def.Source.Type, "source: The type of the relay list source, http or file")
	NewFlag("source.http.url", "sourceUrl").String().Bind(cmd, def.Source.Http.Url, "source: The url of the relay list")
	NewFlag("source.http.timeout", "sourceTimeout").Duration().Bind(cmd, def.Source.Http.Timeout, "source: The timeout of the http request")
	NewFlag("source.http.userAgent", "sourceUserAgent").String().Bind(cmd, def.Source.Http.UserAgent, "source: The User-Agent sent with the http request")
	NewFlag("source.http.retry.count", "sourceRetryCount").Int().Bind(cmd, def.Source.Http.RetryCfg.Count, "source: The number of retries of a failed http request")
	NewFlag("source.http.retry.delay", "sourceRetryDelay").Duration().Bind(cmd, def.Source.Http.RetryCfg.Delay, "source: The initial delay between two http requests")
	NewFlag("source.file.path", "sourceFile").String().Bind(cmd, def.Source.File.Path, "source: The path of the relay list file")

	cmd.Flags().StringSlice(countryFlag, nil, "countries: A country quota as <tag>=<quota>, repeat in priority order to replace the configured table")

	NewFlag("probe.workers", "workers").Int().Bind(cmd, def.Probe.Workers, "probe: The maximum number of probes in flight")
	NewFlag("probe.pingMode", "pingMode").String().Bind(cmd, string(def.Probe.PingMode), "probe: The echo request implementation, auto, icmp or exec")
	NewFlag("probe.pingTimeout", "pingTimeout").Duration().Bind(cmd, def.Probe.PingTimeout, "probe: The time to wait for an echo reply")
	NewFlag("probe.tcpTimeout", "tcpTimeout").Duration().Bind(cmd, def.Probe.TCPTimeout, "probe: The time to wait for each tcp connect")
	NewFlag("probe.ports", "ports").IntSlice().Bind(cmd, def.Probe.Ports, "probe: The tcp ports tried in order when the ping fails")

	NewFlag("output.path", "output").String().Bind(cmd, def.Output.Path, "output: The path of the written relay list")
	NewFlag("output.report", "report").String().Bind(cmd, def.Output.Report, "output: The path of the yaml run report, disabled if empty")

	NewFlag("telemetry.enabled", "telemetryEnabled").Bool().Bind(cmd, def.Telemetry.Enabled, "telemetry: Enables the tracing of the run")
	NewFlag("telemetry.exporter", "telemetryExporter").String().Bind(cmd, string(def.Telemetry.Exporter), "telemetry: The trace exporter, http, grpc, stdout or noop")
	NewFlag("telemetry.url", "telemetryUrl").String().Bind(cmd, def.Telemetry.Url, "telemetry: The url of the otlp collector")
	NewFlag("telemetry.token", "telemetryToken").String().Bind(cmd, def.Telemetry.Token, "telemetry: The bearer token sent to the otlp collector")
	NewFlag("telemetry.tls.enabled", "telemetryTls").Bool().Bind(cmd, def.Telemetry.TLS.Enabled, "telemetry: Enables tls towards the otlp collector")
	NewFlag("telemetry.tls.certPath", "telemetryCertPath").String().Bind(cmd, def.Telemetry.TLS.CertPath, "telemetry: The path of the collector's ca certificate")
	NewFlag("telemetry.textfile", "textfile").String().Bind(cmd, def.Telemetry.Textfile, "telemetry: The path of the prometheus textfile, disabled if empty")

	return cmd
}

// run is the entry point of the run command
func run(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		log := logger.NewLogger()
		ctx := logger.IntoContext(cmd.Context(), log)
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load configuration", "error", err)
			return err
		}

		if err = cfg.Validate(ctx); err != nil {
			return err
		}

		return runRelay(ctx, cfg, version)
	}
}

// loadConfig merges the defaults with the config file, the environment
// and the flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(countryFlag) {
		entries, err := cmd.Flags().GetStringSlice(countryFlag)
		if err != nil {
			return nil, err
		}
		table, err := candidates.ParseTable(entries)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidCountries, err)
		}
		cfg.Countries = table
	}

	return cfg, nil
}

// runRelay runs the pipeline once. Runs without anything to write are
// successful.
func runRelay(ctx context.Context, cfg *config.Config, version string) error {
	log := logger.FromContext(ctx)

	r, err := relay.New(cfg, version)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create relayprobe", "error", err)
		return err
	}

	log.InfoContext(ctx, "Running relayprobe", "version", version)
	summary, err := r.Run(ctx)
	var outErr *output.OutputError
	if !errors.As(err, &outErr) && (errors.Is(err, relay.ErrNoCandidates) || errors.Is(err, relay.ErrNoReachable)) {
		log.WarnContext(ctx, "Nothing written", "result", summary.Result, "candidates", summary.Candidates, "probed", summary.Probed)
		return nil
	}
	if err != nil {
		log.ErrorContext(ctx, "relayprobe run failed", "error", err)
		return err
	}

	log.InfoContext(ctx, "relayprobe run finished", "written", summary.Written, "output", summary.Output, "duration", summary.Duration)
	return nil
}
