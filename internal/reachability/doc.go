// Package reachability decides whether a single IPv4 address is reachable.
//
// A [Prober] first sends one ICMP echo request through a [Pinger] and, if no
// reply arrives in time, falls back to TCP connects on a short ordered list of
// ports. The answer is a plain boolean: permission problems, unreachable
// networks, timeouts and failing ping binaries all mean "unreachable".
//
// Pingers:
//   - icmp: in-process echo via golang.org/x/net/icmp, using an unprivileged
//     datagram socket when the kernel allows it and a raw socket otherwise
//   - exec: the system ping binary
//   - auto: icmp, switching to exec once ICMP sockets turn out to be unavailable
//
// Typical usage:
//
//	prober, err := reachability.NewProber(reachability.DefaultOptions())
//	ok := prober.Reachable(ctx, netip.MustParseAddr("1.2.3.4"))
//
// Every probe is bounded by PingTimeout + len(Ports)*TCPTimeout plus a small
// grace period and records an OpenTelemetry span.
package reachability
