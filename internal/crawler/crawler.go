// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawler walks venues, their submissions and the submissions'
// authors, deduplicating every payload through the content store and
// recording the normalized rows in the index.
//
// The walk is sequential. The index existence sets decide what is skipped
// and the content store outcome decides what is written to disk. A venue
// is recorded only after all of its submissions are processed, so an
// interrupted venue is walked again on the next run.
package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/review-harvester/internal/contentstore"
	"github.com/pdiddy/review-harvester/internal/index"
	"github.com/pdiddy/review-harvester/internal/metrics"
	"github.com/pdiddy/review-harvester/internal/normalize"
	"github.com/pdiddy/review-harvester/pkg/types"
)

// Remote is the review platform as seen by the crawler.
type Remote interface {
	ListVenues(ctx context.Context) ([]string, error)
	ListSubmissions(ctx context.Context, venueID string) ([]types.Note, error)
	FetchProfile(ctx context.Context, authorID string) (types.Profile, error)
}

// Options wires a Crawler. Remote, Store and Index are required.
type Options struct {
	Remote  Remote
	Store   *contentstore.Store
	Index   *index.Index
	Pacer   Pacer
	Logger  *zap.Logger
	Metrics *metrics.Recorder

	// Venues replaces the remote venue listing when non-empty.
	Venues []string
}

// Crawler runs one incremental harvest.
type Crawler struct {
	remote  Remote
	store   *contentstore.Store
	ix      *index.Index
	pacer   Pacer
	log     *zap.Logger
	metrics *metrics.Recorder
	venues  []string

	summary Summary
}

// New validates opts and builds a Crawler.
func New(opts Options) (*Crawler, error) {
	switch {
	case opts.Remote == nil:
		return nil, errors.New("crawler: remote is required")
	case opts.Store == nil:
		return nil, errors.New("crawler: content store is required")
	case opts.Index == nil:
		return nil, errors.New("crawler: index is required")
	}
	c := &Crawler{
		remote:  opts.Remote,
		store:   opts.Store,
		ix:      opts.Index,
		pacer:   opts.Pacer,
		log:     opts.Logger,
		metrics: opts.Metrics,
		venues:  opts.Venues,
	}
	if c.pacer == nil {
		c.pacer = FixedDelay(0)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Run walks every venue and returns the counters of the run. The summary
// is returned with whatever was counted even when Run fails.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	c.summary = Summary{}

	venues, err := c.listVenues(ctx)
	if err != nil {
		return c.summary, err
	}
	c.log.Info("crawl started", zap.Int("venues", len(venues)))

	for _, venueID := range venues {
		if err := ctx.Err(); err != nil {
			return c.summary, err
		}
		if err := c.walkVenue(ctx, venueID); err != nil {
			return c.summary, err
		}
	}

	c.log.Info("crawl finished",
		zap.Int("conferences_walked", c.summary.Conferences.Walked),
		zap.Int("conferences_skipped", c.summary.Conferences.Skipped),
		zap.Int("conferences_failed", c.summary.Conferences.Failed),
		zap.Int("conferences_incomplete", c.summary.Conferences.Incomplete),
	)
	return c.summary, nil
}

func (c *Crawler) listVenues(ctx context.Context) ([]string, error) {
	if len(c.venues) > 0 {
		return c.venues, nil
	}
	var venues []string
	err := c.call(ctx, "list_venues", func() error {
		var err error
		venues, err = c.remote.ListVenues(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	return venues, nil
}

func (c *Crawler) walkVenue(ctx context.Context, venueID string) error {
	log := c.log.With(zap.String("venue", venueID))
	if c.ix.HasConference(venueID) {
		log.Info("conference already harvested, skipping")
		c.summary.Conferences.Skipped++
		c.metrics.Conference("skipped")
		return nil
	}

	var notes []types.Note
	err := c.call(ctx, "list_submissions", func() error {
		var err error
		notes, err = c.remote.ListSubmissions(ctx, venueID)
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Error("listing submissions failed, conference left for the next run", zap.Error(err))
		c.summary.Conferences.Failed++
		c.metrics.Conference("failed")
		return nil
	}
	log.Info("walking conference", zap.Int("submissions", len(notes)))

	before := c.summary.unprocessed()
	for _, note := range notes {
		if err := c.ingestPaper(ctx, venueID, note); err != nil {
			return err
		}
	}
	if n := c.summary.unprocessed() - before; n > 0 {
		log.Warn("conference has unprocessed records, left for the next run", zap.Int("records", n))
		c.summary.Conferences.Incomplete++
		c.metrics.Conference("incomplete")
		return nil
	}

	if err := c.ix.AddConference(ctx, venueID, len(notes)); err != nil {
		return err
	}
	c.summary.Conferences.Walked++
	c.metrics.Conference("walked")
	return nil
}

// call paces, times and counts one remote call.
func (c *Crawler) call(ctx context.Context, op string, fn func() error) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	c.metrics.RemoteCall(op, time.Since(start), err)
	return err
}

// ingestPaper runs the author loop for a submission, then stores its paper
// and review blobs and records the rows. A corrupt or unaddressable blob
// skips the submission without marking it done.
func (c *Crawler) ingestPaper(ctx context.Context, venueID string, note types.Note) error {
	fields := normalize.Paper(note, venueID)
	log := c.log.With(zap.String("paper", note.ID), zap.String("key", fields.Key))

	authorIDs := uniqueIDs(fields.AuthorIDs)
	for _, authorID := range authorIDs {
		if err := c.ingestAuthor(ctx, authorID); err != nil {
			return err
		}
	}

	payload, err := paperPayload(note)
	if err != nil {
		log.Error("unreadable submission payload, skipping", zap.Error(err))
		c.count(&c.summary.Papers, contentstore.Papers, outcomeInvalid)
		return nil
	}
	paperRes, ok, err := c.put(log, &c.summary.Papers, contentstore.Papers, fields.Key, payload)
	if err != nil || !ok {
		return err
	}

	replies := replyPayload(note.Details.DirectReplies)
	reviewRes, ok, err := c.put(log, &c.summary.Reviews, contentstore.Reviews, fields.Key, replies)
	if err != nil || !ok {
		return err
	}

	known := c.ix.HasPaper(note.ID)

	if !known || reviewRes.Outcome != contentstore.Unchanged {
		comment, err := contentstore.Canonicalize(replies)
		if err != nil {
			return fmt.Errorf("serializing replies of %s: %w", note.ID, err)
		}
		err = c.ix.AddReviewSummary(ctx, types.ReviewRow{
			PaperID:      note.ID,
			Rating:       fields.Ratings.Avg,
			Comment:      string(comment),
			MetadataPath: reviewRes.Path,
			MetadataHash: reviewRes.Hash,
		})
		if err != nil {
			return err
		}
	}
	c.count(&c.summary.Reviews, contentstore.Reviews, recordOutcome(reviewRes.Outcome, known))

	// The paper row carries the decision and rating aggregates, so a changed
	// reply set rewrites it even when the submission itself is unchanged.
	outcome := recordOutcome(paperRes.Outcome, known)
	if outcome == outcomeSkipped && reviewRes.Outcome != contentstore.Unchanged {
		outcome = outcomeChanged
	}
	row := types.PaperRow{
		ID:           note.ID,
		Title:        fields.Title,
		Conference:   venueID,
		Decision:     fields.Decision,
		AvgRating:    fields.Ratings.Avg,
		NumReviews:   fields.Ratings.Count,
		MinRating:    fields.Ratings.Min,
		MaxRating:    fields.Ratings.Max,
		CDate:        fields.CDate,
		Number:       fields.Number,
		Paperhash:    fields.Key,
		Abstract:     fields.Abstract,
		MetadataPath: paperRes.Path,
		MetadataHash: paperRes.Hash,
	}
	switch {
	case outcome == outcomeSkipped:
	case known:
		err = c.ix.ReplacePaper(ctx, row, authorIDs)
	default:
		err = c.ix.AddPaper(ctx, row, authorIDs)
	}
	if err != nil {
		return err
	}
	c.count(&c.summary.Papers, contentstore.Papers, outcome)
	log.Debug("paper processed", zap.String("outcome", outcome))
	return nil
}

// ingestAuthor resolves an author not yet indexed to a full or stub
// profile and records it. Email-shaped ids and ids whose profile fetch
// fails become stubs.
func (c *Crawler) ingestAuthor(ctx context.Context, authorID string) error {
	if c.ix.HasAuthor(authorID) {
		c.count(&c.summary.Authors, contentstore.Profiles, outcomeSkipped)
		return nil
	}
	log := c.log.With(zap.String("author", authorID))

	var (
		payload any
		fields  normalize.ProfileFields
		stub    = true
	)
	if !normalize.IsEmail(authorID) {
		var profile types.Profile
		err := c.call(ctx, "fetch_profile", func() error {
			var err error
			profile, err = c.remote.FetchProfile(ctx, authorID)
			return err
		})
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.Warn("profile unavailable, recording stub", zap.Error(err))
			c.summary.ProfileFailures++
		case len(profile.Raw) > 0:
			payload, fields, stub = profile.Raw, normalize.Profile(profile), false
		}
	}
	if stub {
		payload, fields = normalize.StubProfile(authorID)
	}

	res, ok, err := c.put(log, &c.summary.Authors, contentstore.Profiles, authorID, payload)
	if err != nil || !ok {
		return err
	}

	err = c.ix.AddAuthor(ctx, types.AuthorRow{
		ID:           authorID,
		Name:         fields.Name,
		Position:     fields.Position,
		Affiliation:  fields.Affiliation,
		MetadataPath: res.Path,
		MetadataHash: res.Hash,
	})
	if err != nil {
		return err
	}

	outcome := recordOutcome(res.Outcome, false)
	c.count(&c.summary.Authors, contentstore.Profiles, outcome)
	if stub {
		c.summary.Stubs++
	}
	log.Debug("author processed", zap.String("outcome", outcome), zap.Bool("stub", stub))
	return nil
}

// put stores a blob. ok is false when the record must be skipped because
// the existing blob is corrupt or the key cannot be stored; such records
// are counted and logged here. Any other failure is returned.
func (c *Crawler) put(log *zap.Logger, tally *Tally, kind contentstore.Kind, key string, payload any) (contentstore.Result, bool, error) {
	res, err := c.store.Put(kind, key, payload)
	switch {
	case errors.Is(err, contentstore.ErrCorruptBlob):
		log.Error("corrupt blob, skipping record", zap.String("kind", string(kind)), zap.Error(err))
		c.count(tally, kind, outcomeCorrupt)
		return res, false, nil
	case errors.Is(err, contentstore.ErrInvalidKey):
		log.Error("unstorable key, skipping record", zap.String("kind", string(kind)), zap.Error(err))
		c.count(tally, kind, outcomeInvalid)
		return res, false, nil
	case err != nil:
		return res, false, fmt.Errorf("storing %s blob %s: %w", kind, key, err)
	}
	return res, true, nil
}

func (c *Crawler) count(t *Tally, kind contentstore.Kind, outcome string) {
	t.add(outcome)
	c.metrics.Record(string(kind), outcome)
}

// recordOutcome maps a blob outcome to the record outcome. An unchanged
// blob whose row is missing is recovered; one whose row exists is skipped.
func recordOutcome(o contentstore.Outcome, known bool) string {
	switch {
	case o == contentstore.New:
		return outcomeNew
	case o == contentstore.Changed:
		return outcomeChanged
	case known:
		return outcomeSkipped
	default:
		return outcomeRecovered
	}
}

// paperPayload is the submission as received without its reply thread,
// which is stored separately as the review blob.
func paperPayload(note types.Note) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(note.Raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("submission is not a JSON object")
	}
	delete(fields, "details")
	return fields, nil
}

func replyPayload(replies []types.Reply) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(replies))
	for _, r := range replies {
		if len(r.Raw) > 0 {
			out = append(out, r.Raw)
		}
	}
	return out
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
