// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSourceType is returned when the source type is unknown
	ErrInvalidSourceType = errors.New("invalid source type")
	// ErrInvalidSourceHttpURL is returned when the source http url is invalid
	ErrInvalidSourceHttpURL = errors.New("invalid source http url")
	// ErrInvalidSourceHttpTimeout is returned when the source http timeout is invalid
	ErrInvalidSourceHttpTimeout = errors.New("invalid source http timeout")
	// ErrInvalidSourceHttpRetryCount is returned when the source http retry count is invalid
	ErrInvalidSourceHttpRetryCount = errors.New("invalid source http retry count")
	// ErrInvalidSourceFilePath is returned when the source file path is invalid
	ErrInvalidSourceFilePath = errors.New("invalid source file path")
)

// FetchError is returned when the source text cannot be fetched or decoded.
type FetchError struct {
	// Source is the url or path of the source
	Source string
	// Err is the underlying error
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch source %q: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// statusError is returned when the source responds with a non-2xx status code.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}
