// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "github.com/pdiddy/review-harvester/pkg/types"

// PaperFields is everything the index stores about a submission, derived
// from the note and its reply thread.
type PaperFields struct {
	// Key is the derived paperhash naming the paper and review blobs.
	Key       string
	Title     string
	Abstract  string
	Decision  string
	Ratings   RatingSummary
	CDate     int64
	Number    int64
	AuthorIDs []string
}

// Paper normalizes a submission of venueID. Missing title, abstract and
// platform paperhash become empty strings; a missing number or cdate is 0.
func Paper(n types.Note, venueID string) PaperFields {
	replies := n.Details.DirectReplies
	return PaperFields{
		Key:       Paperhash(n.Content.Paperhash.Value, venueID, n.Number.Value),
		Title:     n.Content.Title.Value,
		Abstract:  n.Content.Abstract.Value,
		Decision:  Decision(replies),
		Ratings:   Ratings(replies),
		CDate:     n.CDate.Value,
		Number:    n.Number.Value,
		AuthorIDs: n.AuthorIDs(),
	}
}
