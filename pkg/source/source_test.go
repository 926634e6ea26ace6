// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    Source
		wantErr bool
	}{
		{name: "http", cfg: DefaultConfig(), want: &HttpSource{}},
		{name: "file", cfg: Config{Type: TypeFile, File: FileConfig{Path: "all.txt"}}, want: &FileSource{}},
		{name: "unknown", cfg: Config{Type: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSourceType)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		content     []byte
		contentType string
		want        string
	}{
		{
			name:    "utf-8 without content type",
			content: []byte("中转 1.2.3.4"),
			want:    "中转 1.2.3.4",
		},
		{
			name:    "invalid utf-8 falls back to latin-1",
			content: []byte{'a', 0xe9, 'b'},
			want:    "aéb",
		},
		{
			name:        "declared charset",
			content:     []byte{0xd6, 0xd0},
			contentType: "text/plain; charset=GBK",
			want:        "中",
		},
		{
			name:        "declared utf-8 with invalid bytes falls back to latin-1",
			content:     []byte{'a', 0xe9},
			contentType: "text/plain; charset=utf-8",
			want:        "aé",
		},
		{
			name:        "unknown charset is ignored",
			content:     []byte("1.2.3.4"),
			contentType: "text/plain; charset=klingon",
			want:        "1.2.3.4",
		},
		{
			name:        "malformed content type is ignored",
			content:     []byte("1.2.3.4"),
			contentType: "text/plain; charset",
			want:        "1.2.3.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decode(tt.content, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Source: "all.txt", Err: ErrInvalidSourceFilePath}
	assert.ErrorIs(t, err, ErrInvalidSourceFilePath)
	assert.Contains(t, err.Error(), "all.txt")
}
