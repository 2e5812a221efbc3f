// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-harvester/internal/index"
	"github.com/pdiddy/review-harvester/pkg/types"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		endOfDay bool
		want     int64
		wantErr  bool
	}{
		{name: "empty", in: "", want: 0},
		{name: "epoch ms", in: "1700000000000", want: 1700000000000},
		{name: "date start", in: "2024-01-02", want: 1704153600000},
		{name: "date end of day", in: "2024-01-02", endOfDay: true, want: 1704239999999},
		{name: "surrounding space", in: " 2024-01-02 ", want: 1704153600000},
		{name: "negative", in: "-5", wantErr: true},
		{name: "garbage", in: "last tuesday", wantErr: true},
		{name: "wrong layout", in: "02/01/2024", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.in, tt.endOfDay)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateWindow(t *testing.T) {
	now := time.UnixMilli(1_800_000_000_000)
	tests := []struct {
		name     string
		from, to string
		wantFrom int64
		wantTo   int64
		wantErr  bool
	}{
		{name: "defaults", wantFrom: 0, wantTo: now.UnixMilli()},
		{name: "zero end is literal", to: "0", wantFrom: 0, wantTo: 0},
		{name: "dates", from: "2024-01-02", to: "2024-01-02", wantFrom: 1704153600000, wantTo: 1704239999999},
		{name: "bad from", from: "soon", wantErr: true},
		{name: "bad to", to: "later", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := dateWindow(tt.from, tt.to, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func TestFormatCoAuthors(t *testing.T) {
	var buf bytes.Buffer
	formatCoAuthors(&buf, []types.CoAuthor{
		{ID: "~Bob1", Name: "Bob", Position: "PhD Student", Affiliation: "MIT", Count: 2, LastDate: 1704153600000},
	})
	out := buf.String()
	assert.Contains(t, out, "~Bob1")
	assert.Contains(t, out, "PhD Student")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "1 co-authors")
}

func TestFormatCoAuthorsEmpty(t *testing.T) {
	var buf bytes.Buffer
	formatCoAuthors(&buf, nil)
	assert.Equal(t, "No co-authors found.\n", buf.String())
}

func TestFormatCounts(t *testing.T) {
	var buf bytes.Buffer
	formatCounts(&buf, "data/openreview.db", index.Counts{Conferences: 1, Papers: 2, Reviews: 2, Authors: 3, Edges: 4})
	out := buf.String()
	assert.Contains(t, out, "Index: data/openreview.db")
	assert.Contains(t, out, "papers       2")
	assert.Contains(t, out, "edges        4")
}

func TestWriteStructured(t *testing.T) {
	rows := []types.CoAuthor{{ID: "~Bob1", Count: 1}}

	var js bytes.Buffer
	require.NoError(t, writeStructured(&js, "json", rows))
	assert.Contains(t, js.String(), `"id": "~Bob1"`)

	var ym bytes.Buffer
	require.NoError(t, writeStructured(&ym, "yaml", rows))
	assert.Contains(t, ym.String(), "count: 1")

	assert.Error(t, writeStructured(&js, "xml", rows))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
