// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/telekom/relayprobe/internal/logger"
)

var _ Pinger = (*autoPinger)(nil)

// Pinger sends a single ICMP echo request and waits for the reply.
//
//go:generate go tool moq -out pinger_moq.go . Pinger
type Pinger interface {
	// Ping returns nil if addr answered within timeout.
	// Any returned error means no reply was observed.
	Ping(ctx context.Context, addr netip.Addr, timeout time.Duration) error
}

// NewPinger returns the [Pinger] for the given mode.
func NewPinger(mode PingMode) (Pinger, error) {
	switch mode {
	case PingModeICMP:
		return newICMPPinger(), nil
	case PingModeExec:
		return newExecPinger(), nil
	case PingModeAuto:
		return &autoPinger{icmp: newICMPPinger(), exec: newExecPinger()}, nil
	default:
		return nil, fmt.Errorf("unknown ping mode: %s", mode)
	}
}

// autoPinger uses in-process ICMP until the first attempt reports that
// no ICMP socket can be opened and then sticks to the system ping binary.
type autoPinger struct {
	icmp Pinger
	exec Pinger
	// icmpUnavailable is set once the icmp pinger reported [errICMPNotAvailable].
	icmpUnavailable atomic.Bool
}

func (p *autoPinger) Ping(ctx context.Context, addr netip.Addr, timeout time.Duration) error {
	if !p.icmpUnavailable.Load() {
		err := p.icmp.Ping(ctx, addr, timeout)
		if !errors.Is(err, errICMPNotAvailable) {
			return err
		}
		if p.icmpUnavailable.CompareAndSwap(false, true) {
			logger.FromContext(ctx).WarnContext(ctx, "ICMP sockets not available, falling back to the system ping binary")
		}
	}
	return p.exec.Ping(ctx, addr, timeout)
}
