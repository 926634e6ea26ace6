// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package reachability

import "golang.org/x/sys/windows"

// permissionErrnos are the socket errors caused by missing privileges.
// Raw sockets need an elevated process on windows.
var permissionErrnos = []error{windows.WSAEACCES, windows.ERROR_ACCESS_DENIED}
