// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize extracts typed fields from loosely structured
// submission, reply and profile payloads. All functions are pure.
package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// NotAvailable fills decision, position and affiliation when the source
// payload has no usable value.
const NotAvailable = "N/A"

const maxPaperhashLen = 128

// Paperhash derives the on-disk key for a paper's blobs from the
// platform-provided paperhash, the venue id and the paper's sequence
// number. Path separators become underscores and the platform hash is cut
// to 128 characters, so papers whose platform hash collides still get
// distinct keys.
func Paperhash(platformHash, venueID string, number int64) string {
	h := []rune(replaceSeparators(platformHash))
	if len(h) > maxPaperhashLen {
		h = h[:maxPaperhashLen]
	}
	return string(h) + "|" + replaceSeparators(venueID) + "|" + strconv.FormatInt(number, 10)
}

func replaceSeparators(s string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(s)
}

// Reply classification matches a term anywhere in the reply's serialized
// form, keys and values alike, ignoring case. A comment that merely
// mentions "rating" is classified as a rating reply; its missing rating
// field then contributes nothing.
const (
	decisionTerm = "decision"
	ratingTerm   = "rating"
)

func mentions(r types.Reply, term string) bool {
	return bytes.Contains(bytes.ToLower(r.Raw), []byte(term))
}

// IsDecisionReply reports whether r is classified as a decision reply.
func IsDecisionReply(r types.Reply) bool { return mentions(r, decisionTerm) }

// IsRatingReply reports whether r is classified as a rating reply.
func IsRatingReply(r types.Reply) bool { return mentions(r, ratingTerm) }

// Decision returns the decision field of the last decision reply, or
// NotAvailable when there is none or its value is empty.
func Decision(replies []types.Reply) string {
	decision := ""
	for _, r := range replies {
		if !IsDecisionReply(r) {
			continue
		}
		decision = ""
		if r.Content.Decision.Set {
			decision = stringValue(r.Content.Decision.Value)
		}
	}
	if decision == "" {
		return NotAvailable
	}
	return decision
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ParseRating reads a rating value published either as a JSON integer or
// as text. Text is tried whole first, then token by token on whitespace;
// the first integer token wins ("7 out of 10" is 7). Anything else,
// including non-integral numbers, yields ok false.
func ParseRating(raw json.RawMessage) (rating int, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return parseRatingText(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseRatingText(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	for _, tok := range strings.Fields(s) {
		if v, err := strconv.Atoi(tok); err == nil {
			return v, true
		}
	}
	return 0, false
}

// RatingSummary aggregates the parseable ratings of a reply set. Avg, Min
// and Max are nil when Count is zero.
type RatingSummary struct {
	Avg   *float64
	Count int
	Min   *int
	Max   *int
}

// Ratings collects every parseable rating from the rating replies.
func Ratings(replies []types.Reply) RatingSummary {
	var (
		sum    int
		lo, hi int
		count  int
	)
	for _, r := range replies {
		if !IsRatingReply(r) || !r.Content.Rating.Set {
			continue
		}
		v, ok := ParseRating(r.Content.Rating.Value)
		if !ok {
			continue
		}
		if count == 0 || v < lo {
			lo = v
		}
		if count == 0 || v > hi {
			hi = v
		}
		sum += v
		count++
	}

	if count == 0 {
		return RatingSummary{}
	}
	avg := float64(sum) / float64(count)
	return RatingSummary{Avg: &avg, Count: count, Min: &lo, Max: &hi}
}
