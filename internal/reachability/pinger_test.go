// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPinger(t *testing.T) {
	tests := []struct {
		mode    PingMode
		want    any
		wantErr bool
	}{
		{mode: PingModeICMP, want: &icmpPinger{}},
		{mode: PingModeExec, want: &execPinger{}},
		{mode: PingModeAuto, want: &autoPinger{}},
		{mode: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p, err := NewPinger(tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestAutoPinger_Ping(t *testing.T) {
	addr := netip.MustParseAddr("1.2.3.4")
	errNoReply := errors.New("no reply")

	t.Run("icmp answers", func(t *testing.T) {
		icmpMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return nil }}
		execMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return errNoReply }}
		p := &autoPinger{icmp: icmpMock, exec: execMock}

		assert.NoError(t, p.Ping(t.Context(), addr, time.Second))
		assert.Len(t, execMock.PingCalls(), 0)
	})

	t.Run("icmp fails without fallback", func(t *testing.T) {
		icmpMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return errNoReply }}
		execMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return nil }}
		p := &autoPinger{icmp: icmpMock, exec: execMock}

		assert.ErrorIs(t, p.Ping(t.Context(), addr, time.Second), errNoReply)
		assert.Len(t, execMock.PingCalls(), 0)
	})

	t.Run("icmp unavailable switches to exec for good", func(t *testing.T) {
		icmpMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return errICMPNotAvailable }}
		execMock := &PingerMock{PingFunc: func(_ context.Context, _ netip.Addr, _ time.Duration) error { return nil }}
		p := &autoPinger{icmp: icmpMock, exec: execMock}

		for range 3 {
			assert.NoError(t, p.Ping(t.Context(), addr, time.Second))
		}
		assert.Len(t, icmpMock.PingCalls(), 1)
		assert.Len(t, execMock.PingCalls(), 3)
	})
}
