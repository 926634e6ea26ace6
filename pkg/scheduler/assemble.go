// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"cmp"
	"slices"

	"github.com/telekom/relayprobe/pkg/candidates"
)

// Assemble orders the accepted candidates of every country by their source
// index and returns their lines grouped by country in table order.
func Assemble(results Results, table candidates.Table) []string {
	lines := make([]string, 0, results.Total())
	for _, c := range table.Countries() {
		accepted := slices.Clone(results[c])
		slices.SortFunc(accepted, func(a, b candidates.Candidate) int {
			return cmp.Compare(a.Index, b.Index)
		})
		for _, cand := range accepted {
			lines = append(lines, cand.Line)
		}
	}
	return lines
}
