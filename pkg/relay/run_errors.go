// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import "errors"

var (
	// ErrNoCandidates is returned when the source contains no tagged entry with a valid address
	ErrNoCandidates = errors.New("no candidates found in source")
	// ErrNoReachable is returned when none of the candidates was accepted
	ErrNoReachable = errors.New("no reachable candidates found")
)
