// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package reachability

import (
	"errors"
	"os"
)

// errICMPNotAvailable is returned when no ICMP socket can be opened.
// This typically occurs when the process has neither NET_RAW capabilities
// nor membership in net.ipv4.ping_group_range, e.g. in restricted containers.
var errICMPNotAvailable = errors.New("no NET_RAW capabilities, ICMP not available")

// isPermissionError reports whether err was caused by missing privileges.
func isPermissionError(err error) bool {
	for _, errno := range permissionErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return errors.Is(err, os.ErrPermission)
}
