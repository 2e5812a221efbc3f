// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index is the relational side of the harvest: a SQLite database
// holding conferences, authors, papers, aggregated reviews and
// author-paper edges, plus in-memory existence sets mirroring the primary
// keys of the first three tables.
//
// Every write commits before it returns. The index has one owner for the
// lifetime of a run and is not safe for concurrent writers.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// Index manages the harvest database and its existence sets.
type Index struct {
	db   *sql.DB
	path string

	authors     map[string]struct{}
	papers      map[string]struct{}
	conferences map[string]struct{}
}

// Open opens or creates the database at path, creates the schema if it
// does not exist and rebuilds the existence sets from the stored keys.
func Open(ctx context.Context, path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps writes strictly sequential.
	db.SetMaxOpenConns(1)

	ix := &Index{
		db:          db,
		path:        path,
		authors:     make(map[string]struct{}),
		papers:      make(map[string]struct{}),
		conferences: make(map[string]struct{}),
	}

	if err := ix.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := ix.loadExistenceSets(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading existence sets: %w", err)
	}
	return ix, nil
}

// Close checkpoints the write-ahead log and releases the database.
func (ix *Index) Close() error {
	_, ckErr := ix.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
	if err := ix.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	if ckErr != nil {
		return fmt.Errorf("checkpointing database: %w", ckErr)
	}
	return nil
}

// Path returns the database file path.
func (ix *Index) Path() string { return ix.path }

func (ix *Index) createSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conferences (
			id TEXT PRIMARY KEY,
			submissions INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id TEXT PRIMARY KEY,
			name TEXT,
			position TEXT,
			affiliation TEXT,
			metadata_path TEXT,
			metadata_hash TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			conference TEXT,
			decision TEXT,
			avg_rating REAL,
			num_reviews INTEGER,
			min_rating INTEGER,
			max_rating INTEGER,
			cdate INTEGER,
			number INTEGER,
			paperhash TEXT,
			abstract TEXT,
			metadata_path TEXT,
			metadata_hash TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			paper_id TEXT PRIMARY KEY,
			rating INTEGER,
			comment TEXT,
			metadata_path TEXT,
			metadata_hash TEXT,
			FOREIGN KEY (paper_id) REFERENCES papers (id)
		)`,
		`CREATE TABLE IF NOT EXISTS author_paper_edges (
			author_id TEXT,
			paper_id TEXT,
			cdate INTEGER,
			FOREIGN KEY (author_id) REFERENCES authors (id),
			FOREIGN KEY (paper_id) REFERENCES papers (id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_edges_author_paper ON author_paper_edges(author_id, paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_paper ON author_paper_edges(paper_id)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_conference ON papers(conference)`,
	}

	for _, stmt := range statements {
		if _, err := ix.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func (ix *Index) loadExistenceSets(ctx context.Context) error {
	for _, load := range []struct {
		table string
		set   map[string]struct{}
	}{
		{"authors", ix.authors},
		{"papers", ix.papers},
		{"conferences", ix.conferences},
	} {
		if err := ix.loadIDs(ctx, load.table, load.set); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Index) loadIDs(ctx context.Context, table string, set map[string]struct{}) error {
	rows, err := ix.db.QueryContext(ctx, `SELECT id FROM `+table)
	if err != nil {
		return fmt.Errorf("reading %s ids: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning %s id: %w", table, err)
		}
		set[id] = struct{}{}
	}
	return rows.Err()
}

// HasAuthor reports whether the author id is already indexed.
func (ix *Index) HasAuthor(id string) bool { _, ok := ix.authors[id]; return ok }

// HasPaper reports whether the paper id is already indexed.
func (ix *Index) HasPaper(id string) bool { _, ok := ix.papers[id]; return ok }

// HasConference reports whether the conference has been fully processed.
func (ix *Index) HasConference(id string) bool { _, ok := ix.conferences[id]; return ok }

// AddConference records a fully processed conference. Known ids are a no-op.
func (ix *Index) AddConference(ctx context.Context, id string, submissions int) error {
	if ix.HasConference(id) {
		return nil
	}
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conferences (id, submissions) VALUES (?, ?)`,
		id, submissions,
	)
	if err != nil {
		return fmt.Errorf("inserting conference %s: %w", id, err)
	}
	ix.conferences[id] = struct{}{}
	return nil
}

// AddAuthor inserts an author row. Known ids are a no-op.
func (ix *Index) AddAuthor(ctx context.Context, a types.AuthorRow) error {
	if ix.HasAuthor(a.ID) {
		return nil
	}
	return ix.ReplaceAuthor(ctx, a)
}

// ReplaceAuthor inserts or replaces an author row regardless of the
// existence set. It is used when the author's blob changed.
func (ix *Index) ReplaceAuthor(ctx context.Context, a types.AuthorRow) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO authors (id, name, position, affiliation, metadata_path, metadata_hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Position, a.Affiliation, a.MetadataPath, a.MetadataHash,
	)
	if err != nil {
		return fmt.Errorf("inserting author %s: %w", a.ID, err)
	}
	ix.authors[a.ID] = struct{}{}
	return nil
}

// AddPaper inserts a paper row together with one edge per author id, in a
// single transaction. Known ids are a no-op. The paper row marks the paper
// done, so callers write the review summary first.
func (ix *Index) AddPaper(ctx context.Context, p types.PaperRow, authorIDs []string) error {
	if ix.HasPaper(p.ID) {
		return nil
	}
	return ix.ReplacePaper(ctx, p, authorIDs)
}

// ReplacePaper inserts or replaces a paper row and rewrites its edges
// regardless of the existence set. The edges carry the paper's cdate.
func (ix *Index) ReplacePaper(ctx context.Context, p types.PaperRow, authorIDs []string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM author_paper_edges WHERE paper_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clearing edges of %s: %w", p.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO author_paper_edges (author_id, paper_id, cdate) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer stmt.Close()

	for _, authorID := range authorIDs {
		if _, err := stmt.ExecContext(ctx, authorID, p.ID, p.CDate); err != nil {
			return fmt.Errorf("inserting edge %s-%s: %w", authorID, p.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO papers (
			id, title, conference, decision, avg_rating, num_reviews,
			min_rating, max_rating, cdate, number, paperhash, abstract,
			metadata_path, metadata_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Conference, p.Decision, p.AvgRating, p.NumReviews,
		p.MinRating, p.MaxRating, p.CDate, p.Number, p.Paperhash, p.Abstract,
		p.MetadataPath, p.MetadataHash,
	)
	if err != nil {
		return fmt.Errorf("inserting paper %s: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing paper %s: %w", p.ID, err)
	}
	ix.papers[p.ID] = struct{}{}
	return nil
}

// AddReviewSummary inserts or replaces the aggregated review row of a paper.
func (ix *Index) AddReviewSummary(ctx context.Context, r types.ReviewRow) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reviews (paper_id, rating, comment, metadata_path, metadata_hash)
		 VALUES (?, ?, ?, ?, ?)`,
		r.PaperID, r.Rating, r.Comment, r.MetadataPath, r.MetadataHash,
	)
	if err != nil {
		return fmt.Errorf("inserting review summary %s: %w", r.PaperID, err)
	}
	return nil
}
