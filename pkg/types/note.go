// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Optional holds a JSON value decoded leniently. A missing, null or
// mistyped value leaves Set false instead of failing the enclosing record.
type Optional[T any] struct {
	Value T
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler. It never returns an error.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	var v *T
	if err := json.Unmarshal(b, &v); err != nil || v == nil {
		*o = Optional[T]{}
		return nil
	}
	o.Value, o.Set = *v, true
	return nil
}

// Valued is the {"value": ...} envelope OpenReview API v2 wraps around
// every note content field. Decoding is lenient in the same way as Optional.
type Valued[T any] struct {
	Value T
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler. It never returns an error.
func (v *Valued[T]) UnmarshalJSON(b []byte) error {
	var env struct {
		Value Optional[T] `json:"value"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		*v = Valued[T]{}
		return nil
	}
	v.Value, v.Set = env.Value.Value, env.Value.Set
	return nil
}

// Note is a venue submission with its direct reply thread, as returned by
// the venue's Submission invitation.
type Note struct {
	ID      string          `json:"id"`
	Number  Optional[int64] `json:"number"`
	CDate   Optional[int64] `json:"cdate"`
	Content NoteContent     `json:"content"`
	Details NoteDetails     `json:"details"`

	// Raw is the note exactly as received, used for content hashing.
	Raw json.RawMessage `json:"-"`
}

// NoteContent lists the submission fields the harvester reads. Every other
// field survives only in Raw.
type NoteContent struct {
	Title     Valued[string]   `json:"title"`
	Abstract  Valued[string]   `json:"abstract"`
	AuthorIDs Valued[[]string] `json:"authorids"`
	Paperhash Valued[string]   `json:"paperhash"`
}

// NoteDetails carries the expansions requested with details=directReplies.
type NoteDetails struct {
	DirectReplies []Reply `json:"directReplies"`
}

// UnmarshalJSON decodes the note and keeps a copy of the raw bytes.
func (n *Note) UnmarshalJSON(b []byte) error {
	type wire Note
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*n = Note(w)
	n.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// AuthorIDs returns the listed author ids, or nil when the field is absent.
func (n Note) AuthorIDs() []string {
	return n.Content.AuthorIDs.Value
}

// Reply is one entry of a submission's direct reply thread: an official
// review, meta review, decision, comment or rebuttal. Its shape varies by
// venue and reply type.
type Reply struct {
	ID      string       `json:"id"`
	Content ReplyContent `json:"content"`

	// Raw is the reply exactly as received.
	Raw json.RawMessage `json:"-"`
}

// ReplyContent holds the reply fields the normalizer extracts. Rating is
// kept raw because venues publish it either as a number or as free text.
type ReplyContent struct {
	Rating   Valued[json.RawMessage] `json:"rating"`
	Decision Valued[json.RawMessage] `json:"decision"`
}

// UnmarshalJSON decodes the reply and keeps a copy of the raw bytes.
func (r *Reply) UnmarshalJSON(b []byte) error {
	type wire Reply
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Reply(w)
	r.Raw = append(json.RawMessage(nil), b...)
	return nil
}
