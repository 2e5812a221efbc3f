// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openreview is a minimal client for the OpenReview API v2: venue
// listing, submissions with their direct replies, and author profiles.
package openreview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/review-harvester/internal/httputil"
	"github.com/pdiddy/review-harvester/pkg/types"
)

// DefaultBaseURL is the public API v2 root.
const DefaultBaseURL = "https://api2.openreview.net"

const defaultPageSize = 1000

// ErrProfileNotFound is returned by FetchProfile when the id resolves to
// no profile.
var ErrProfileNotFound = errors.New("profile not found")

// Client talks to one OpenReview API root.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
	Token     string
	PageSize  int
}

// New builds a client from the remote settings. A nil httpClient gets one
// with cfg.Timeout.
func New(cfg types.RemoteConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		HTTP:      httpClient,
		BaseURL:   strings.TrimRight(base, "/"),
		UserAgent: cfg.UserAgent,
		Token:     cfg.Token,
		PageSize:  pageSize,
	}
}

// ListVenues returns the members of the "venues" group.
func (c *Client) ListVenues(ctx context.Context) ([]string, error) {
	var body struct {
		Groups []struct {
			ID      string   `json:"id"`
			Members []string `json:"members"`
		} `json:"groups"`
	}
	if err := c.get(ctx, "/groups", url.Values{"id": {"venues"}}, &body); err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	var venues []string
	for _, g := range body.Groups {
		venues = append(venues, g.Members...)
	}
	return venues, nil
}

// ListSubmissions returns every submission of a venue with its direct
// replies, following offset pages until a short page.
func (c *Client) ListSubmissions(ctx context.Context, venueID string) ([]types.Note, error) {
	var notes []types.Note
	for offset := 0; ; {
		params := url.Values{
			"invitation": {venueID + "/-/Submission"},
			"details":    {"directReplies"},
			"offset":     {strconv.Itoa(offset)},
			"limit":      {strconv.Itoa(c.PageSize)},
		}
		var page struct {
			Notes []types.Note `json:"notes"`
			Count int          `json:"count"`
		}
		if err := c.get(ctx, "/notes", params, &page); err != nil {
			return nil, fmt.Errorf("listing submissions of %s at offset %d: %w", venueID, offset, err)
		}
		notes = append(notes, page.Notes...)
		offset += len(page.Notes)
		if len(page.Notes) < c.PageSize || (page.Count > 0 && offset >= page.Count) {
			return notes, nil
		}
	}
}

// FetchProfile resolves an author id to its profile. An unknown id yields
// ErrProfileNotFound.
func (c *Client) FetchProfile(ctx context.Context, authorID string) (types.Profile, error) {
	var body struct {
		Profiles []types.Profile `json:"profiles"`
	}
	err := c.get(ctx, "/profiles", url.Values{"id": {authorID}}, &body)
	if errors.Is(err, errNotFoundStatus) {
		return types.Profile{}, fmt.Errorf("%s: %w", authorID, ErrProfileNotFound)
	}
	if err != nil {
		return types.Profile{}, fmt.Errorf("fetching profile %s: %w", authorID, err)
	}
	if len(body.Profiles) == 0 {
		return types.Profile{}, fmt.Errorf("%s: %w", authorID, ErrProfileNotFound)
	}
	return body.Profiles[0], nil
}

var errNotFoundStatus = errors.New("HTTP 404")

// StatusError reports a non-200 response.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Path, e.StatusCode)
}

// Is matches the internal not-found marker on 404.
func (e *StatusError) Is(target error) bool {
	return target == errNotFoundStatus && e.StatusCode == http.StatusNotFound
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.BaseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}
