// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-harvester/pkg/types"
)

func replies(t *testing.T, raw ...string) []types.Reply {
	t.Helper()
	var out []types.Reply
	require.NoError(t, json.Unmarshal([]byte("["+strings.Join(raw, ",")+"]"), &out))
	return out
}

func TestPaperhash(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		venue    string
		number   int64
		want     string
	}{
		{"plain", "smith|deep_nets", "ICLR.cc/2024/Conference", 12, "smith|deep_nets|ICLR.cc_2024_Conference|12"},
		{"separators replaced", `a/b\c`, "V", 1, "a_b_c|V|1"},
		{"empty platform hash", "", "V/1", 0, "|V_1|0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paperhash(tt.platform, tt.venue, tt.number))
		})
	}
}

func TestPaperhashTruncatesPlatformHash(t *testing.T) {
	long := strings.Repeat("é", 200)
	got := Paperhash(long, "V", 7)
	assert.Equal(t, strings.Repeat("é", 128)+"|V|7", got)
}

func TestPaperhashDistinctNumbers(t *testing.T) {
	a := Paperhash("same|hash", "ICLR.cc/2024/Conference", 1)
	b := Paperhash("same|hash", "ICLR.cc/2024/Conference", 2)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "/")
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{"integer", `7`, 7, true},
		{"negative integer", `-2`, -2, true},
		{"string integer", `"7"`, 7, true},
		{"padded string", `"  8 "`, 8, true},
		{"first token", `"7 out of 10"`, 7, true},
		{"later token", `"rating: 6 (marginal)"`, 6, true},
		{"colon suffix does not parse", `"8: accept, good paper"`, 0, false},
		{"bad", `"bad"`, 0, false},
		{"float", `7.5`, 0, false},
		{"bool", `true`, 0, false},
		{"null", `null`, 0, false},
		{"empty", ``, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRating(json.RawMessage(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatings(t *testing.T) {
	rs := replies(t,
		`{"id":"r1","content":{"rating":{"value":"7 out of 10"}}}`,
		`{"id":"r2","content":{"rating":{"value":3}}}`,
		`{"id":"r3","content":{"rating":{"value":"bad"}}}`,
		`{"id":"r4","content":{"rating":{"value":"9"}}}`,
		`{"id":"c1","content":{"comment":{"value":"thanks"}}}`,
	)

	got := Ratings(rs)
	require.Equal(t, 3, got.Count)
	require.NotNil(t, got.Avg)
	assert.InDelta(t, 19.0/3.0, *got.Avg, 1e-9)
	assert.Equal(t, 3, *got.Min)
	assert.Equal(t, 9, *got.Max)
}

func TestRatingsNoneParseable(t *testing.T) {
	rs := replies(t,
		`{"id":"r1","content":{"rating":{"value":"strong reject"}}}`,
		`{"id":"c1","content":{"comment":{"value":"what rating do you expect?"}}}`,
	)
	got := Ratings(rs)
	assert.Equal(t, 0, got.Count)
	assert.Nil(t, got.Avg)
	assert.Nil(t, got.Min)
	assert.Nil(t, got.Max)

	assert.Equal(t, RatingSummary{}, Ratings(nil))
}

func TestRatingsRequireClassification(t *testing.T) {
	// No "rating" anywhere in the serialized reply, so it is not scanned.
	rs := replies(t, `{"id":"r1","content":{"score":{"value":5}}}`)
	assert.False(t, IsRatingReply(rs[0]))
	assert.Equal(t, 0, Ratings(rs).Count)
}

func TestDecision(t *testing.T) {
	tests := []struct {
		name    string
		replies []string
		want    string
	}{
		{"none", nil, NotAvailable},
		{"single", []string{`{"content":{"decision":{"value":"Accept (poster)"}}}`}, "Accept (poster)"},
		{
			"last wins",
			[]string{
				`{"content":{"decision":{"value":"Reject"}}}`,
				`{"content":{"decision":{"value":"Accept (oral)"}}}`,
			},
			"Accept (oral)",
		},
		{
			"later mention without field resets to N/A",
			[]string{
				`{"content":{"decision":{"value":"Reject"}}}`,
				`{"content":{"comment":{"value":"We appeal the DECISION"}}}`,
			},
			NotAvailable,
		},
		{"empty value", []string{`{"content":{"decision":{"value":""}}}`}, NotAvailable},
		{"non string value", []string{`{"content":{"decision":{"value":1}}}`}, NotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decision(replies(t, tt.replies...)))
		})
	}
}

func TestPaper(t *testing.T) {
	raw := `{
		"id": "abc123",
		"number": 42,
		"cdate": 1695000000000,
		"content": {
			"title": {"value": "Sparse Attention"},
			"abstract": {"value": "We study sparsity."},
			"authorids": {"value": ["~Ada_Lovelace1", "bob@example.com"]},
			"paperhash": {"value": "lovelace|sparse_attention"}
		},
		"details": {"directReplies": [
			{"id": "r1", "content": {"rating": {"value": "6: marginally above"}}},
			{"id": "r2", "content": {"rating": {"value": 8}}},
			{"id": "d1", "content": {"decision": {"value": "Accept"}}}
		]}
	}`
	var note types.Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))

	got := Paper(note, "ICLR.cc/2024/Conference")
	assert.Equal(t, "lovelace|sparse_attention|ICLR.cc_2024_Conference|42", got.Key)
	assert.Equal(t, "Sparse Attention", got.Title)
	assert.Equal(t, "We study sparsity.", got.Abstract)
	assert.Equal(t, "Accept", got.Decision)
	assert.Equal(t, int64(1695000000000), got.CDate)
	assert.Equal(t, int64(42), got.Number)
	assert.Equal(t, []string{"~Ada_Lovelace1", "bob@example.com"}, got.AuthorIDs)
	assert.Equal(t, 1, got.Ratings.Count, "only the integer rating parses")
	assert.Equal(t, 8, *got.Ratings.Max)
}

func TestPaperMalformedFields(t *testing.T) {
	raw := `{"id":"x","number":null,"content":{"title":"not wrapped","authorids":{"value":"nope"}}}`
	var note types.Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))

	got := Paper(note, "V")
	assert.Equal(t, "", got.Title)
	assert.Nil(t, got.AuthorIDs)
	assert.Equal(t, "|V|0", got.Key)
	assert.Equal(t, NotAvailable, got.Decision)
}
