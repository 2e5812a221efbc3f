// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// Profile is an author profile as returned by the profiles endpoint.
type Profile struct {
	ID      string         `json:"id"`
	Content ProfileContent `json:"content"`

	// Raw is the profile exactly as received, used for content hashing.
	Raw json.RawMessage `json:"-"`
}

// ProfileContent holds the profile fields the normalizer extracts. A
// malformed names or history list decodes as unset rather than failing.
type ProfileContent struct {
	Names   Optional[[]ProfileName]  `json:"names"`
	History Optional[[]HistoryEntry] `json:"history"`
	Emails  Optional[[]string]       `json:"emails"`
}

// ProfileName is one entry of a profile's name list; the first is preferred.
type ProfileName struct {
	Fullname Optional[string] `json:"fullname"`
}

// HistoryEntry is one position held by the author; the first is current.
type HistoryEntry struct {
	Position    Optional[string]      `json:"position"`
	Institution Optional[Institution] `json:"institution"`
}

// Institution names the organisation of a HistoryEntry.
type Institution struct {
	Name Optional[string] `json:"name"`
}

// UnmarshalJSON decodes the profile and keeps a copy of the raw bytes.
func (p *Profile) UnmarshalJSON(b []byte) error {
	type wire Profile
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Profile(w)
	p.Raw = append(json.RawMessage(nil), b...)
	return nil
}
