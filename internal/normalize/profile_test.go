// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-harvester/pkg/types"
)

func TestProfile(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ProfileFields
	}{
		{
			name: "full profile",
			raw: `{"id":"~Ada_Lovelace1","content":{
				"names":[{"fullname":"Ada Lovelace"},{"fullname":"A. Lovelace"}],
				"history":[{"position":"PhD student","institution":{"name":"University of London"}},
				           {"position":"Intern","institution":{"name":"Analytical Engines"}}]}}`,
			want: ProfileFields{Name: "Ada Lovelace", Position: "PhD student", Affiliation: "University of London"},
		},
		{
			name: "no history",
			raw:  `{"id":"~B1","content":{"names":[{"fullname":"Bea"}]}}`,
			want: ProfileFields{Name: "Bea", Position: NotAvailable, Affiliation: NotAvailable},
		},
		{
			name: "empty history",
			raw:  `{"id":"~B1","content":{"names":[{"fullname":"Bea"}],"history":[]}}`,
			want: ProfileFields{Name: "Bea", Position: NotAvailable, Affiliation: NotAvailable},
		},
		{
			name: "history without institution",
			raw:  `{"id":"~B1","content":{"names":[{"fullname":"Bea"}],"history":[{"position":"Professor"}]}}`,
			want: ProfileFields{Name: "Bea", Position: NotAvailable, Affiliation: NotAvailable},
		},
		{
			name: "malformed history",
			raw:  `{"id":"~B1","content":{"names":[{"fullname":"Bea"}],"history":"Professor at X"}}`,
			want: ProfileFields{Name: "Bea", Position: NotAvailable, Affiliation: NotAvailable},
		},
		{
			name: "no names",
			raw:  `{"id":"~C1","content":{}}`,
			want: ProfileFields{Name: NotAvailable, Position: NotAvailable, Affiliation: NotAvailable},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p types.Profile
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.Equal(t, tt.want, Profile(p))
		})
	}
}

func TestStubProfile(t *testing.T) {
	t.Run("profile id", func(t *testing.T) {
		payload, fields := StubProfile("~Missing_Person1")
		assert.Equal(t, map[string]any{"id": "~Missing_Person1"}, payload)
		assert.Equal(t, ProfileFields{Name: "~Missing_Person1", Position: NotAvailable, Affiliation: NotAvailable}, fields)
	})

	t.Run("email embeds the address", func(t *testing.T) {
		payload, fields := StubProfile("ada@example.org")
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"ada@example.org","content":{"emails":["ada@example.org"]}}`, string(data))
		assert.Equal(t, "ada@example.org", fields.Name)
	})
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ada@example.org"))
	assert.False(t, IsEmail("~Ada_Lovelace1"))
}
