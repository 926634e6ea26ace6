// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// PingMode selects the [Pinger] implementation used for the primary probe.
type PingMode string

// PingMode constants for the primary probe.
const (
	PingModeAuto PingMode = "auto"
	PingModeICMP PingMode = "icmp"
	PingModeExec PingMode = "exec"
)

func (m PingMode) String() string {
	if m.IsValid() {
		return string(m)
	}
	return "unknown"
}

func (m PingMode) IsValid() bool {
	valid := []PingMode{PingModeAuto, PingModeICMP, PingModeExec}
	return slices.Contains(valid, m)
}

const (
	// DefaultPingTimeout is the time to wait for an echo reply.
	DefaultPingTimeout = 2 * time.Second
	// DefaultTCPTimeout is the time to wait for each TCP connect.
	DefaultTCPTimeout = 1 * time.Second
	// boundGrace is added on top of the summed probe timeouts to
	// form the hard upper bound of a single probe.
	boundGrace = 500 * time.Millisecond
)

// DefaultPorts are the TCP ports tried in order when the ping fails.
var DefaultPorts = []int{80, 443}

// Options configures a [Prober].
type Options struct {
	// PingMode selects the pinger used for the primary probe.
	PingMode PingMode `json:"pingMode" yaml:"pingMode" mapstructure:"pingMode"`
	// PingTimeout is the timeout of the primary probe.
	PingTimeout time.Duration `json:"pingTimeout" yaml:"pingTimeout" mapstructure:"pingTimeout"`
	// TCPTimeout is the timeout of each TCP connect of the fallback probe.
	TCPTimeout time.Duration `json:"tcpTimeout" yaml:"tcpTimeout" mapstructure:"tcpTimeout"`
	// Ports are the TCP ports of the fallback probe, tried in order.
	Ports []int `json:"ports" yaml:"ports" mapstructure:"ports"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PingMode:    PingModeAuto,
		PingTimeout: DefaultPingTimeout,
		TCPTimeout:  DefaultTCPTimeout,
		Ports:       slices.Clone(DefaultPorts),
	}
}

// Validate checks the options and returns all violations joined.
func (o *Options) Validate() (err error) {
	if !o.PingMode.IsValid() {
		err = errors.Join(err, fmt.Errorf("invalid ping mode %q, must be one of auto, icmp, exec", string(o.PingMode)))
	}
	if o.PingTimeout <= 0 {
		err = errors.Join(err, errors.New("ping timeout must be greater than 0"))
	}
	if o.TCPTimeout <= 0 {
		err = errors.Join(err, errors.New("tcp timeout must be greater than 0"))
	}
	for _, p := range o.Ports {
		if p <= 0 || p > 65535 {
			err = errors.Join(err, fmt.Errorf("invalid port: %d, must be between 1 and 65535", p))
		}
	}
	return err
}

// Bound returns the hard upper bound of a single probe.
func (o *Options) Bound() time.Duration {
	return o.PingTimeout + time.Duration(len(o.Ports))*o.TCPTimeout + boundGrace
}
