// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// ErrNotFound is returned by the single-row lookups.
var ErrNotFound = errors.New("not found")

// CoAuthorColumns is the fixed column order of a co-author result, also
// used when the result is empty.
var CoAuthorColumns = []string{"id", "name", "position", "affiliation", "count", "last_date"}

// QueryCoAuthors lists the co-authors of authorID on papers whose edge
// cdate lies in [startDate, endDate] (epoch milliseconds). The window selects the author's papers; the co-authors of
// those papers are then grouped with the number of shared papers and the
// newest shared cdate. The result is ordered by count descending, then id,
// and is never nil.
func (ix *Index) QueryCoAuthors(ctx context.Context, authorID string, startDate, endDate int64) ([]types.CoAuthor, error) {
	paperIDs, err := ix.paperIDsInWindow(ctx, authorID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	result := []types.CoAuthor{}
	if len(paperIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(paperIDs)), ",")
	query := `SELECT a.id, a.name, a.position, a.affiliation,
			COUNT(*) AS count, MAX(ape.cdate) AS last_date
		FROM authors a
		JOIN author_paper_edges ape ON a.id = ape.author_id
		WHERE ape.paper_id IN (` + placeholders + `)
		  AND a.id != ?
		GROUP BY a.id, a.name, a.position, a.affiliation
		ORDER BY count DESC, a.id`

	args := make([]any, 0, len(paperIDs)+1)
	for _, id := range paperIDs {
		args = append(args, id)
	}
	args = append(args, authorID)

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying co-authors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                           types.CoAuthor
			name, position, affiliation sql.NullString
		)
		if err := rows.Scan(&c.ID, &name, &position, &affiliation, &c.Count, &c.LastDate); err != nil {
			return nil, fmt.Errorf("scanning co-author: %w", err)
		}
		c.Name, c.Position, c.Affiliation = name.String, position.String, affiliation.String
		result = append(result, c)
	}
	return result, rows.Err()
}

func (ix *Index) paperIDsInWindow(ctx context.Context, authorID string, startDate, endDate int64) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT paper_id FROM author_paper_edges
		 WHERE author_id = ? AND cdate >= ? AND cdate <= ?`,
		authorID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("querying author papers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning paper id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Counts holds the row count of every table.
type Counts struct {
	Conferences int `json:"conferences" yaml:"conferences"`
	Authors     int `json:"authors" yaml:"authors"`
	Papers      int `json:"papers" yaml:"papers"`
	Reviews     int `json:"reviews" yaml:"reviews"`
	Edges       int `json:"edges" yaml:"edges"`
}

// Counts returns the row count of every table.
func (ix *Index) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"conferences", &c.Conferences},
		{"authors", &c.Authors},
		{"papers", &c.Papers},
		{"reviews", &c.Reviews},
		{"author_paper_edges", &c.Edges},
	} {
		if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM `+q.table).Scan(q.dst); err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", q.table, err)
		}
	}
	return c, nil
}

// BlobRefs lists the blob reference of every author, paper and review row,
// ordered by table then id.
func (ix *Index) BlobRefs(ctx context.Context) ([]types.BlobRef, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT 'authors', id, metadata_path, metadata_hash FROM authors
		 UNION ALL
		 SELECT 'papers', id, metadata_path, metadata_hash FROM papers
		 UNION ALL
		 SELECT 'reviews', paper_id, metadata_path, metadata_hash FROM reviews
		 ORDER BY 1, 2`)
	if err != nil {
		return nil, fmt.Errorf("querying blob references: %w", err)
	}
	defer rows.Close()

	var refs []types.BlobRef
	for rows.Next() {
		var (
			ref        types.BlobRef
			path, hash sql.NullString
		)
		if err := rows.Scan(&ref.Table, &ref.ID, &path, &hash); err != nil {
			return nil, fmt.Errorf("scanning blob reference: %w", err)
		}
		ref.MetadataPath, ref.MetadataHash = path.String, hash.String
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Author returns the author row for id.
func (ix *Index) Author(ctx context.Context, id string) (types.AuthorRow, error) {
	var a types.AuthorRow
	err := ix.db.QueryRowContext(ctx,
		`SELECT id, name, position, affiliation, metadata_path, metadata_hash FROM authors WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Position, &a.Affiliation, &a.MetadataPath, &a.MetadataHash)
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("author %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return a, fmt.Errorf("looking up author %s: %w", id, err)
	}
	return a, nil
}

// Paper returns the paper row for id.
func (ix *Index) Paper(ctx context.Context, id string) (types.PaperRow, error) {
	var (
		p      types.PaperRow
		avg    sql.NullFloat64
		lo, hi sql.NullInt64
	)
	err := ix.db.QueryRowContext(ctx,
		`SELECT id, title, conference, decision, avg_rating, num_reviews,
			min_rating, max_rating, cdate, number, paperhash, abstract,
			metadata_path, metadata_hash
		 FROM papers WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Conference, &p.Decision, &avg, &p.NumReviews,
		&lo, &hi, &p.CDate, &p.Number, &p.Paperhash, &p.Abstract,
		&p.MetadataPath, &p.MetadataHash)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("looking up paper %s: %w", id, err)
	}
	if avg.Valid {
		p.AvgRating = &avg.Float64
	}
	if lo.Valid {
		v := int(lo.Int64)
		p.MinRating = &v
	}
	if hi.Valid {
		v := int(hi.Int64)
		p.MaxRating = &v
	}
	return p, nil
}

// Review returns the review summary row of a paper.
func (ix *Index) Review(ctx context.Context, paperID string) (types.ReviewRow, error) {
	var (
		r      types.ReviewRow
		rating sql.NullFloat64
	)
	err := ix.db.QueryRowContext(ctx,
		`SELECT paper_id, rating, comment, metadata_path, metadata_hash FROM reviews WHERE paper_id = ?`, paperID,
	).Scan(&r.PaperID, &rating, &r.Comment, &r.MetadataPath, &r.MetadataHash)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("review %s: %w", paperID, ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("looking up review %s: %w", paperID, err)
	}
	if rating.Valid {
		r.Rating = &rating.Float64
	}
	return r, nil
}

// PaperAuthors returns the author ids linked to a paper, sorted.
func (ix *Index) PaperAuthors(ctx context.Context, paperID string) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT author_id FROM author_paper_edges WHERE paper_id = ? ORDER BY author_id`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying paper authors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning author id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Submissions returns the recorded submission count of a conference.
func (ix *Index) Submissions(ctx context.Context, conferenceID string) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx,
		`SELECT submissions FROM conferences WHERE id = ?`, conferenceID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("conference %s: %w", conferenceID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up conference %s: %w", conferenceID, err)
	}
	return n, nil
}
