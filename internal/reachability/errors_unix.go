// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package reachability

import "golang.org/x/sys/unix"

// permissionErrnos are the socket errors caused by missing privileges.
var permissionErrnos = []error{unix.EPERM, unix.EACCES}
