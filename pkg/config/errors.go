// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidWorkers is returned when the number of workers is invalid
	ErrInvalidWorkers = errors.New("invalid number of workers")
	// ErrInvalidCountries is returned when the country quotas are invalid
	ErrInvalidCountries = errors.New("invalid countries")
	// ErrInvalidProbeOptions is returned when the probe options are invalid
	ErrInvalidProbeOptions = errors.New("invalid probe options")
	// ErrConflictingPaths is returned when two configured files share the same path
	ErrConflictingPaths = errors.New("conflicting output paths")
)
