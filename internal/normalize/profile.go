// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// ProfileFields are the author attributes stored in the index.
type ProfileFields struct {
	Name        string
	Position    string
	Affiliation string
}

// IsEmail reports whether an author id is email-shaped. Such ids are never
// looked up remotely and always become stub profiles.
func IsEmail(authorID string) bool {
	return strings.Contains(authorID, "@")
}

// Profile extracts the display name from the first name entry and the
// position and affiliation from the first history entry. Position and
// affiliation are taken together: if either is missing both are
// NotAvailable. A missing name is NotAvailable as well.
func Profile(p types.Profile) ProfileFields {
	f := ProfileFields{
		Name:        NotAvailable,
		Position:    NotAvailable,
		Affiliation: NotAvailable,
	}

	if names := p.Content.Names; names.Set && len(names.Value) > 0 {
		if n := names.Value[0].Fullname; n.Set && n.Value != "" {
			f.Name = n.Value
		}
	}

	if hist := p.Content.History; hist.Set && len(hist.Value) > 0 {
		h := hist.Value[0]
		if h.Position.Set && h.Institution.Set && h.Institution.Value.Name.Set {
			f.Position = h.Position.Value
			f.Affiliation = h.Institution.Value.Name.Value
		}
	}
	return f
}

// StubProfile is the payload and fields recorded for an author whose
// profile could not be resolved. The identifier is the only content; an
// email-shaped id is also embedded as the profile's email.
func StubProfile(authorID string) (payload map[string]any, fields ProfileFields) {
	payload = map[string]any{"id": authorID}
	if IsEmail(authorID) {
		payload["content"] = map[string]any{"emails": []string{authorID}}
	}
	return payload, ProfileFields{
		Name:        authorID,
		Position:    NotAvailable,
		Affiliation: NotAvailable,
	}
}
