// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/telekom/relayprobe/internal/logger"
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if vErr := c.Source.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The source configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Countries.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The country configuration is invalid", "error", vErr)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidCountries, vErr))
	}

	if vErr := c.Probe.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The probe configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Output.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The output configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.validatePaths(); vErr != nil {
		log.ErrorContext(ctx, "The configured files overlap", "error", vErr)
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the probe configuration
func (c *ProbeConfig) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if c.Workers < 1 {
		log.ErrorContext(ctx, "The number of workers should be at least 1", "workers", c.Workers)
		err = errors.Join(err, ErrInvalidWorkers)
	}

	if vErr := c.Options.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The probe options are invalid", "error", vErr)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidProbeOptions, vErr))
	}

	return err
}

// validatePaths checks that the output, report and textfile paths are distinct
func (c *Config) validatePaths() error {
	seen := map[string]string{}
	files := []struct{ name, path string }{
		{"output.path", c.Output.Path},
		{"output.report", c.Output.Report},
		{"telemetry.textfile", c.Telemetry.Textfile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		p := filepath.Clean(f.path)
		if other, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s and %s are both %q", ErrConflictingPaths, other, f.name, f.path)
		}
		seen[p] = f.name
	}
	return nil
}
