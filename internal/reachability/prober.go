// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/telekom/relayprobe/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	_ Prober = (*prober)(nil)
)

// Prober is able to tell whether an IPv4 address is reachable.
//
//go:generate go tool moq -out prober_moq.go . Prober
type Prober interface {
	// Reachable probes addr once. It never fails: every fault of the
	// underlying probes is reported as unreachable.
	Reachable(ctx context.Context, addr netip.Addr) bool
}

type prober struct {
	// pinger is the primary probe.
	pinger Pinger
	// dialTCP is the fallback probe.
	dialTCP func(ctx context.Context, addr netip.AddrPort, timeout time.Duration) error
	opts    Options
}

// NewProber creates a [Prober] with the pinger selected by opts.PingMode.
func NewProber(opts Options) (Prober, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prober options: %w", err)
	}

	pinger, err := NewPinger(opts.PingMode)
	if err != nil {
		return nil, err
	}

	return &prober{
		pinger:  pinger,
		dialTCP: dialTCP,
		opts:    opts,
	}, nil
}

// Reachable sends one echo request and, if it is not answered, tries to
// connect to the configured ports in order.
func (p *prober) Reachable(ctx context.Context, addr netip.Addr) bool {
	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("reachability.prober")
	ctx, span := tracer.Start(ctx, "Reachable", trace.WithAttributes(
		attribute.Stringer("reachability.addr", addr),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("addr", addr.String())

	ctx, cancel := context.WithTimeout(ctx, p.opts.Bound())
	defer cancel()

	err := p.pinger.Ping(ctx, addr, p.opts.PingTimeout)
	if err == nil {
		log.DebugContext(ctx, "Echo reply received")
		span.SetAttributes(
			attribute.Bool("reachability.reachable", true),
			attribute.String("reachability.method", "icmp"),
		)
		return true
	}
	log.DebugContext(ctx, "Ping failed, trying TCP ports", "error", err)
	span.AddEvent("Ping failed", trace.WithAttributes(
		attribute.String("reachability.error", err.Error()),
	))

	for _, port := range p.opts.Ports {
		if ctx.Err() != nil {
			log.DebugContext(ctx, "Probe canceled", "error", ctx.Err())
			break
		}

		target := netip.AddrPortFrom(addr, uint16(port)) // #nosec G115 // ports are validated
		err := p.dialTCP(ctx, target, p.opts.TCPTimeout)
		if err == nil {
			log.DebugContext(ctx, "TCP connection established", "port", port)
			span.SetAttributes(
				attribute.Bool("reachability.reachable", true),
				attribute.String("reachability.method", "tcp"),
				attribute.Int("reachability.port", port),
			)
			return true
		}
		log.DebugContext(ctx, "TCP connection failed", "port", port, "error", err)
		span.AddEvent("TCP connection failed", trace.WithAttributes(
			attribute.Int("reachability.port", port),
			attribute.String("reachability.error", err.Error()),
		))
	}

	span.SetAttributes(attribute.Bool("reachability.reachable", false))
	return false
}

// dialTCP opens a TCP connection to addr and closes it right away.
func dialTCP(ctx context.Context, addr netip.AddrPort, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp4", addr.String())
	if err != nil {
		return err
	}
	return conn.Close()
}
