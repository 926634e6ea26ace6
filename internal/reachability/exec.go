// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"context"
	"fmt"
	"net/netip"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

var _ Pinger = (*execPinger)(nil)

// execGrace is the time the ping binary gets on top of the probe timeout
// before it is killed.
const execGrace = 500 * time.Millisecond

// execPinger runs the system ping binary once per probe.
type execPinger struct {
	// command builds the ping command. It allows us to mock the binary in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
	// goos selects the ping flags.
	goos string
}

func newExecPinger() *execPinger {
	return &execPinger{
		command: exec.CommandContext,
		goos:    runtime.GOOS,
	}
}

// Ping runs "ping" with a single echo request and succeeds on exit code 0.
func (p *execPinger) Ping(ctx context.Context, addr netip.Addr, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout+execGrace)
	defer cancel()

	cmd := p.command(ctx, "ping", pingArgs(p.goos, addr, timeout)...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ping %s failed: %w", addr, err)
	}
	return nil
}

// pingArgs returns the arguments to send exactly one echo request to addr.
func pingArgs(goos string, addr netip.Addr, timeout time.Duration) []string {
	if goos == "windows" {
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), addr.String()}
	}
	return []string{"-c", "1", addr.String()}
}
