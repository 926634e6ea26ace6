// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/telekom/relayprobe/pkg/candidates"
)

// countriesKey is the config key of the quota table
const countriesKey = "countries"

var quotaType = reflect.TypeOf(candidates.Quota{})

// Load returns the defaults overlaid with every value known to v.
// A configured quota table replaces the default table as a whole.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if v.IsSet(countriesKey) {
		cfg.Countries = nil
	}

	if err := v.Unmarshal(cfg, withQuotaFieldCheck); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withQuotaFieldCheck appends requireQuotaFields to viper's decode hooks.
func withQuotaFieldCheck(c *mapstructure.DecoderConfig) {
	if c.DecodeHook == nil {
		c.DecodeHook = requireQuotaFields()
		return
	}
	c.DecodeHook = mapstructure.ComposeDecodeHookFunc(c.DecodeHook, requireQuotaFields())
}

// requireQuotaFields rejects quota table entries without a tag or quota,
// which would otherwise silently decode to their zero values.
func requireQuotaFields() mapstructure.DecodeHookFuncType {
	return func(_, to reflect.Type, data any) (any, error) {
		if to != quotaType {
			return data, nil
		}
		entry, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}

		for _, field := range []string{"tag", "quota"} {
			if !hasKey(entry, field) {
				return nil, fmt.Errorf("%w: entry %v has no %s", ErrInvalidCountries, entry, field)
			}
		}
		return data, nil
	}
}

func hasKey(m map[string]any, key string) bool {
	for k := range m {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
