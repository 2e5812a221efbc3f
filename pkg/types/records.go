// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorRow is one row of the authors table.
type AuthorRow struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Position     string `json:"position" yaml:"position"`
	Affiliation  string `json:"affiliation" yaml:"affiliation"`
	MetadataPath string `json:"metadata_path" yaml:"metadata_path"`
	MetadataHash string `json:"metadata_hash" yaml:"metadata_hash"`
}

// PaperRow is one row of the papers table. Rating aggregates are nil when
// the paper has no parseable rating.
type PaperRow struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Conference   string   `json:"conference" yaml:"conference"`
	Decision     string   `json:"decision" yaml:"decision"`
	AvgRating    *float64 `json:"avg_rating" yaml:"avg_rating"`
	NumReviews   int      `json:"num_reviews" yaml:"num_reviews"`
	MinRating    *int     `json:"min_rating" yaml:"min_rating"`
	MaxRating    *int     `json:"max_rating" yaml:"max_rating"`
	CDate        int64    `json:"cdate" yaml:"cdate"`
	Number       int64    `json:"number" yaml:"number"`
	Paperhash    string   `json:"paperhash" yaml:"paperhash"`
	Abstract     string   `json:"abstract" yaml:"abstract"`
	MetadataPath string   `json:"metadata_path" yaml:"metadata_path"`
	MetadataHash string   `json:"metadata_hash" yaml:"metadata_hash"`
}

// ReviewRow is the aggregated review record of one paper.
type ReviewRow struct {
	PaperID string `json:"paper_id" yaml:"paper_id"`

	// Rating is the paper's average rating, nil when none parsed.
	Rating *float64 `json:"rating" yaml:"rating"`

	// Comment is the canonical JSON of the full reply set.
	Comment      string `json:"comment" yaml:"comment"`
	MetadataPath string `json:"metadata_path" yaml:"metadata_path"`
	MetadataHash string `json:"metadata_hash" yaml:"metadata_hash"`
}

// CoAuthor is one row of a co-author query.
type CoAuthor struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Position    string `json:"position" yaml:"position"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// Count is the number of shared papers inside the query window.
	Count int `json:"count" yaml:"count"`

	// LastDate is the newest shared paper's cdate in epoch milliseconds.
	LastDate int64 `json:"last_date" yaml:"last_date"`
}

// BlobRef ties an index row to the blob it was written from.
type BlobRef struct {
	Table        string `json:"table" yaml:"table"`
	ID           string `json:"id" yaml:"id"`
	MetadataPath string `json:"metadata_path" yaml:"metadata_path"`
	MetadataHash string `json:"metadata_hash" yaml:"metadata_hash"`
}
