// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package candidates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
)

// Country is the lower-case country tag of a candidate, e.g. "sg".
type Country string

// String returns the upper-case representation used in summaries.
func (c Country) String() string {
	return strings.ToUpper(string(c))
}

// validTag matches the tags usable as a "#<tag>" token.
var validTag = regexp.MustCompile(`^[a-z0-9]+$`)

// Quota is the maximum number of accepted candidates of a country.
type Quota struct {
	Country Country `json:"tag" yaml:"tag" mapstructure:"tag"`
	Quota   int     `json:"quota" yaml:"quota" mapstructure:"quota"`
}

// Table is the ordered list of country quotas. The order of the entries
// is the priority order used for tag attribution and output.
type Table []Quota

// DefaultTable returns the quota table used when nothing is configured.
func DefaultTable() Table {
	return Table{
		{Country: "sg", Quota: 100},
		{Country: "hk", Quota: 50},
		{Country: "jp", Quota: 50},
		{Country: "tw", Quota: 50},
		{Country: "kr", Quota: 50},
	}
}

// Countries returns the countries in priority order.
func (t Table) Countries() []Country {
	countries := make([]Country, 0, len(t))
	for _, q := range t {
		countries = append(countries, q.Country)
	}
	return countries
}

// Quota returns the quota of the given country and whether it is configured.
func (t Table) Quota(c Country) (int, bool) {
	for _, q := range t {
		if q.Country == c {
			return q.Quota, true
		}
	}
	return 0, false
}

// Total returns the sum of all quotas.
func (t Table) Total() int {
	total := 0
	for _, q := range t {
		total += q.Quota
	}
	return total
}

// Validate checks that the table is usable and returns all violations joined.
func (t Table) Validate() (err error) {
	if len(t) == 0 {
		return errors.New("at least one country is required")
	}

	seen := make(map[Country]struct{}, len(t))
	for i, q := range t {
		if !validTag.MatchString(string(q.Country)) {
			err = errors.Join(err, fmt.Errorf("countries[%d]: invalid tag %q, must be lower-case alphanumeric", i, string(q.Country)))
		}
		if _, ok := seen[q.Country]; ok {
			err = errors.Join(err, fmt.Errorf("countries[%d]: duplicate tag %q", i, string(q.Country)))
		}
		seen[q.Country] = struct{}{}
		if q.Quota < 0 {
			err = errors.Join(err, fmt.Errorf("countries[%d]: quota of %q must not be negative", i, string(q.Country)))
		}
	}
	return err
}

// ParseTable parses entries of the form "<tag>=<quota>" into a [Table].
// Tags are lower-cased, the order of the entries is kept.
func ParseTable(entries []string) (Table, error) {
	table := make(Table, 0, len(entries))
	for _, e := range entries {
		tag, quota, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid country %q, expected <tag>=<quota>", e)
		}
		n, err := strconv.Atoi(strings.TrimSpace(quota))
		if err != nil {
			return nil, fmt.Errorf("invalid quota of country %q: %w", e, err)
		}
		table = append(table, Quota{
			Country: Country(strings.ToLower(strings.TrimSpace(tag))),
			Quota:   n,
		})
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
