// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/telekom/relayprobe/pkg/candidates"
)

func TestAssemble(t *testing.T) {
	table := candidates.DefaultTable()
	c := func(idx int, country candidates.Country, line string) candidates.Candidate {
		return candidates.Candidate{Index: idx, Line: line, Country: country}
	}

	tests := []struct {
		name    string
		results Results
		want    []string
	}{
		{
			name:    "empty",
			results: Results{},
			want:    []string{},
		},
		{
			name: "restores source order within a country",
			results: Results{
				"sg": {c(7, "sg", "c"), c(1, "sg", "a"), c(4, "sg", "b")},
			},
			want: []string{"a", "b", "c"},
		},
		{
			name: "groups countries in priority order",
			results: Results{
				"kr": {c(0, "kr", "kr-0")},
				"hk": {c(9, "hk", "hk-9"), c(2, "hk", "hk-2")},
				"sg": {c(5, "sg", "sg-5")},
			},
			want: []string{"sg-5", "hk-2", "hk-9", "kr-0"},
		},
		{
			name: "ignores countries not in the table",
			results: Results{
				"us": {c(0, "us", "us-0")},
				"jp": {c(1, "jp", "jp-1")},
			},
			want: []string{"jp-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Assemble(tt.results, table))
		})
	}
}

func TestAssemble_DoesNotMutateResults(t *testing.T) {
	results := Results{"sg": {{Index: 2, Line: "b"}, {Index: 1, Line: "a"}}}
	_ = Assemble(results, candidates.Table{{Country: "sg", Quota: 2}})
	assert.Equal(t, 2, results["sg"][0].Index)
}
