// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"net/url"
	"time"

	"github.com/telekom/relayprobe/internal/helper"
	"github.com/telekom/relayprobe/internal/logger"
)

const (
	// TypeHttp fetches the source via HTTP GET
	TypeHttp = "http"
	// TypeFile reads the source from a local file
	TypeFile = "file"
)

const (
	// DefaultURL is the source list fetched when nothing is configured.
	DefaultURL = "https://zip.cm.edu.kg/all.txt"
	// DefaultTimeout is the timeout of a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every HTTP request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; GithubAction/1.0)"
	// maxRetryCount is the exclusive upper bound of the retry count.
	maxRetryCount = 5
)

// Config is the configuration of the source
type Config struct {
	Type string     `json:"type" yaml:"type" mapstructure:"type"`
	Http HttpConfig `json:"http" yaml:"http" mapstructure:"http"`
	File FileConfig `json:"file" yaml:"file" mapstructure:"file"`
}

// HttpConfig is the configuration for the http source
type HttpConfig struct {
	Url       string             `json:"url" yaml:"url" mapstructure:"url"`
	Timeout   time.Duration      `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	UserAgent string             `json:"userAgent" yaml:"userAgent" mapstructure:"userAgent"`
	RetryCfg  helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// FileConfig is the configuration for the file source
type FileConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// DefaultConfig returns the http source of the public relay list.
func DefaultConfig() Config {
	return Config{
		Type: TypeHttp,
		Http: HttpConfig{
			Url:       DefaultURL,
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
			RetryCfg: helper.RetryConfig{
				Count: 0,
				Delay: 1 * time.Second,
			},
		},
	}
}

// Validate validates the source configuration
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	switch c.Type {
	case TypeHttp:
		if u, err := url.ParseRequestURI(c.Http.Url); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			log.ErrorContext(ctx, "The source http url is not a valid url", "url", c.Http.Url)
			return ErrInvalidSourceHttpURL
		}
		if c.Http.Timeout <= 0 {
			log.ErrorContext(ctx, "The source http timeout should be above 0", "timeout", c.Http.Timeout)
			return ErrInvalidSourceHttpTimeout
		}
		if c.Http.RetryCfg.Count < 0 || c.Http.RetryCfg.Count >= maxRetryCount {
			log.ErrorContext(ctx, "The amount of source http retries should be between 0 and 4", "retryCount", c.Http.RetryCfg.Count)
			return ErrInvalidSourceHttpRetryCount
		}
	case TypeFile:
		if c.File.Path == "" {
			log.ErrorContext(ctx, "The source file path cannot be empty")
			return ErrInvalidSourceFilePath
		}
	default:
		log.ErrorContext(ctx, "The source type is unknown", "type", c.Type)
		return ErrInvalidSourceType
	}

	return nil
}
