// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package candidates extracts country-tagged IPv4 entries from source text.
package candidates

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
)

// Candidate is a tagged source line with a valid IPv4 address.
type Candidate struct {
	// Index is the zero-based line number in the source text.
	Index int
	// Line is the trimmed source line. It is the dedup key and the output.
	Line string
	// Country is the highest-priority tag present on the line.
	Country Country
	// Addr is the first IPv4 address found on the line.
	Addr netip.Addr
}

// ipv4Pattern matches four dot-separated decimal groups with an optional
// prefix length, which is ignored.
var ipv4Pattern = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,3}){3})(?:/\d{1,2})?`)

// Extractor turns source text into candidates for the countries of a [Table].
type Extractor struct {
	countries []Country
	tags      []*regexp.Regexp
}

// NewExtractor creates an [Extractor] recognizing the tags of the table.
// The table must be valid.
func NewExtractor(table Table) *Extractor {
	e := &Extractor{
		countries: table.Countries(),
		tags:      make([]*regexp.Regexp, 0, len(table)),
	}
	for _, c := range e.countries {
		e.tags = append(e.tags, regexp.MustCompile(`(?i)#`+regexp.QuoteMeta(string(c))+`\b`))
	}
	return e
}

// Extract returns the candidates of text in source order.
//
// Lines without a recognized tag or without a valid IPv4 address are
// skipped. Repeated lines are collected once.
func (e *Extractor) Extract(text string) []Candidate {
	var result []Candidate
	seen := map[string]struct{}{}

	for i, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		country, ok := e.primary(line)
		if !ok {
			continue
		}

		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}

		addr, ok := parseIPv4(line)
		if !ok {
			continue
		}

		result = append(result, Candidate{
			Index:   i,
			Line:    line,
			Country: country,
			Addr:    addr,
		})
	}
	return result
}

// primary returns the first country in priority order tagged on the line.
func (e *Extractor) primary(line string) (Country, bool) {
	for i, re := range e.tags {
		if re.MatchString(line) {
			return e.countries[i], true
		}
	}
	return "", false
}

// Extract is a shorthand for NewExtractor(table).Extract(text).
func Extract(text string, table Table) []Candidate {
	return NewExtractor(table).Extract(text)
}

// splitLines splits text at "\n", "\r\n" and "\r".
// A trailing line break does not produce an empty last line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// parseIPv4 returns the first IPv4-looking token of line if all its
// octets are within [0,255]. Leading zeros are accepted.
func parseIPv4(line string) (netip.Addr, bool) {
	m := ipv4Pattern.FindStringSubmatch(line)
	if m == nil {
		return netip.Addr{}, false
	}

	var octets [4]byte
	for i, part := range strings.Split(m[1], ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return netip.Addr{}, false
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), true
}
