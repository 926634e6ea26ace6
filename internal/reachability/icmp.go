// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"sync/atomic"
	"time"

	"github.com/telekom/relayprobe/internal/logger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var _ Pinger = (*icmpPinger)(nil)

const (
	// mtuSize is the size of the buffer used to read ICMP messages.
	mtuSize = 1500
	// protocolICMP is the IANA protocol number of ICMP for IPv4.
	protocolICMP = 1
)

const (
	// networkUnprivileged is the datagram ICMP socket that works without
	// NET_RAW when the gid is within net.ipv4.ping_group_range.
	networkUnprivileged = "udp4"
	// networkRaw is the raw ICMP socket that requires NET_RAW.
	networkRaw = "ip4:icmp"
)

var echoPayload = []byte("relayprobe")

// icmpPinger sends ICMP echo requests through golang.org/x/net/icmp.
type icmpPinger struct {
	// listen opens an ICMP packet connection. It allows us to mock the socket in tests.
	listen func(network, address string) (icmpConn, error)
	// id is the echo identifier used on raw sockets.
	id int
	// seq is the last used echo sequence number.
	seq atomic.Uint32
}

// icmpConn is the subset of [icmp.PacketConn] used by the pinger.
type icmpConn interface {
	ReadFrom(b []byte) (int, net.Addr, error)
	WriteTo(b []byte, dst net.Addr) (int, error)
	SetDeadline(t time.Time) error
	Close() error
}

func newICMPPinger() *icmpPinger {
	return &icmpPinger{
		listen: func(network, address string) (icmpConn, error) {
			return icmp.ListenPacket(network, address)
		},
		id: os.Getpid() & 0xffff,
	}
}

// Ping sends one echo request to addr and waits for the matching reply.
//
// Returns [errICMPNotAvailable] if neither an unprivileged nor a raw ICMP
// socket can be opened.
func (p *icmpPinger) Ping(ctx context.Context, addr netip.Addr, timeout time.Duration) error {
	log := logger.FromContext(ctx)
	conn, network, err := p.open()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	req := echoRequest{
		addr:    addr,
		id:      p.id,
		seq:     int(p.seq.Add(1) & 0xffff),
		checkID: network == networkRaw,
	}
	b, err := req.marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal echo request: %w", err)
	}

	if _, err := conn.WriteTo(b, destination(network, addr)); err != nil {
		return fmt.Errorf("failed to send echo request: %w", err)
	}

	// Closing the socket unblocks ReadFrom if the parent context
	// is canceled before the read deadline.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	buf := make([]byte, mtuSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return context.DeadlineExceeded
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read from ICMP socket: %w", err)
		}

		if !req.matches(src, buf[:n]) {
			log.DebugContext(ctx, "Received unrelated ICMP message, ignoring", "from", src)
			continue
		}
		return nil
	}
}

// open opens an unprivileged ICMP socket and falls back to a raw one.
func (p *icmpPinger) open() (icmpConn, string, error) {
	var errs error
	for _, network := range []string{networkUnprivileged, networkRaw} {
		conn, err := p.listen(network, "0.0.0.0")
		if err == nil {
			return conn, network, nil
		}
		errs = errors.Join(errs, err)
	}

	if isPermissionError(errs) {
		return nil, "", errICMPNotAvailable
	}
	return nil, "", fmt.Errorf("failed to create ICMP socket: %w", errs)
}

// destination returns the address type expected by the socket network.
func destination(network string, addr netip.Addr) net.Addr {
	if network == networkUnprivileged {
		return &net.UDPAddr{IP: addr.AsSlice()}
	}
	return &net.IPAddr{IP: addr.AsSlice()}
}

// echoRequest identifies a sent echo request so its reply can be recognized.
type echoRequest struct {
	addr netip.Addr
	id   int
	seq  int
	// checkID is false on unprivileged sockets because the
	// kernel replaces the identifier with the local port.
	checkID bool
}

func (r echoRequest) marshal() ([]byte, error) {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: r.id, Seq: r.seq, Data: echoPayload},
	}
	return msg.Marshal(nil)
}

// matches reports whether b is the echo reply to r sent by src.
func (r echoRequest) matches(src net.Addr, b []byte) bool {
	from, ok := addrFromNet(src)
	if !ok || from != r.addr {
		return false
	}

	msg, err := icmp.ParseMessage(protocolICMP, b)
	if err != nil || msg.Type != ipv4.ICMPTypeEchoReply {
		return false
	}

	echo, ok := msg.Body.(*icmp.Echo)
	if !ok || echo.Seq != r.seq {
		return false
	}
	return !r.checkID || echo.ID == r.id
}

// addrFromNet extracts the IPv4 address from a [net.Addr].
func addrFromNet(addr net.Addr) (netip.Addr, bool) {
	var ip net.IP
	switch a := addr.(type) {
	case *net.UDPAddr:
		ip = a.IP
	case *net.IPAddr:
		ip = a.IP
	case *net.TCPAddr:
		ip = a.IP
	default:
		return netip.Addr{}, false
	}

	parsed, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return parsed.Unmap(), true
}
