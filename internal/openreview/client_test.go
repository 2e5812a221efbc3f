// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openreview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-harvester/internal/httputil"
	"github.com/pdiddy/review-harvester/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func testClient(t *testing.T, h http.HandlerFunc, pageSize int) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(types.RemoteConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "review-harvester/test"},
		BaseURL:    ts.URL + "/",
		PageSize:   pageSize,
		Token:      "tok",
	}, ts.Client())
}

func TestNewDefaults(t *testing.T) {
	c := New(types.RemoteConfig{HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second}}, nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, defaultPageSize, c.PageSize)
	assert.Equal(t, 5*time.Second, c.HTTP.Timeout)
}

func TestListVenues(t *testing.T) {
	var captured *http.Request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"groups":[{"id":"venues","members":["ICLR.cc/2024/Conference","NeurIPS.cc/2023/Conference"]}]}`)
	}, 10)

	venues, err := c.ListVenues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ICLR.cc/2024/Conference", "NeurIPS.cc/2023/Conference"}, venues)

	assert.Equal(t, "/groups", captured.URL.Path)
	assert.Equal(t, "venues", captured.URL.Query().Get("id"))
	assert.Equal(t, "Bearer tok", captured.Header.Get("Authorization"))
	assert.Equal(t, "review-harvester/test", captured.Header.Get("User-Agent"))
}

func TestListSubmissionsPages(t *testing.T) {
	const total = 5
	var offsets []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/notes", r.URL.Path)
		assert.Equal(t, "V/-/Submission", q.Get("invitation"))
		assert.Equal(t, "directReplies", q.Get("details"))
		assert.Equal(t, "2", q.Get("limit"))
		offsets = append(offsets, q.Get("offset"))

		offset, _ := strconv.Atoi(q.Get("offset"))
		var notes []map[string]any
		for i := offset; i < total && i < offset+2; i++ {
			notes = append(notes, map[string]any{"id": fmt.Sprintf("n%d", i), "number": i + 1})
		}
		json.NewEncoder(w).Encode(map[string]any{"notes": notes, "count": total})
	}, 2)

	notes, err := c.ListSubmissions(context.Background(), "V")
	require.NoError(t, err)
	require.Len(t, notes, total)
	assert.Equal(t, []string{"0", "2", "4"}, offsets)
	assert.Equal(t, "n4", notes[4].ID)
	assert.Equal(t, int64(5), notes[4].Number.Value)
	assert.NotEmpty(t, notes[0].Raw)
}

func TestListSubmissionsExactPageStopsOnCount(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"notes":[{"id":"a"},{"id":"b"}],"count":2}`)
	}, 2)

	notes, err := c.ListSubmissions(context.Background(), "V")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, 1, calls)
}

func TestListSubmissionsHTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, 10)

	_, err := c.ListSubmissions(context.Background(), "V")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestFetchProfile(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantID   string
		notFound bool
		wantErr  bool
	}{
		{
			name:   "found",
			status: http.StatusOK,
			body:   `{"profiles":[{"id":"~Ada_Lovelace1","content":{"names":[{"fullname":"Ada Lovelace"}]}}]}`,
			wantID: "~Ada_Lovelace1",
		},
		{name: "empty list", status: http.StatusOK, body: `{"profiles":[]}`, notFound: true},
		{name: "404", status: http.StatusNotFound, body: `{"name":"NotFoundError"}`, notFound: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, wantErr: true},
		{name: "bad json", status: http.StatusOK, body: `{"profiles":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/profiles", r.URL.Path)
				assert.Equal(t, "~Ada_Lovelace1", r.URL.Query().Get("id"))
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}, 10)

			p, err := c.FetchProfile(context.Background(), "~Ada_Lovelace1")
			switch {
			case tt.notFound:
				assert.ErrorIs(t, err, ErrProfileNotFound)
			case tt.wantErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrProfileNotFound)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, p.ID)
				assert.Equal(t, "Ada Lovelace", p.Content.Names.Value[0].Fullname.Value)
			}
		})
	}
}

func TestRetriesThrottledRequests(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"groups":[]}`)
	}, 10)

	venues, err := c.ListVenues(context.Background())
	require.NoError(t, err)
	assert.Empty(t, venues)
	assert.Equal(t, 2, calls)
}
