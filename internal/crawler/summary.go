// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"fmt"
	"io"
)

// Record outcomes, also used as metric label values.
const (
	outcomeNew       = "new"
	outcomeChanged   = "changed"
	outcomeSkipped   = "skipped"
	outcomeRecovered = "recovered"
	outcomeCorrupt   = "corrupt"
	outcomeInvalid   = "invalid"
)

// Tally counts record outcomes of one kind.
type Tally struct {
	// New records had no blob before this run.
	New int `json:"new" yaml:"new"`
	// Changed records had a blob with different content.
	Changed int `json:"changed" yaml:"changed"`
	// Skipped records were already indexed with unchanged content.
	Skipped int `json:"skipped" yaml:"skipped"`
	// Recovered records had an unchanged blob but no index row.
	Recovered int `json:"recovered" yaml:"recovered"`
	// Corrupt records had an unparseable blob and were left alone.
	Corrupt int `json:"corrupt" yaml:"corrupt"`
	// Invalid records could not be stored at all.
	Invalid int `json:"invalid" yaml:"invalid"`
}

func (t *Tally) add(outcome string) {
	switch outcome {
	case outcomeNew:
		t.New++
	case outcomeChanged:
		t.Changed++
	case outcomeSkipped:
		t.Skipped++
	case outcomeRecovered:
		t.Recovered++
	case outcomeCorrupt:
		t.Corrupt++
	case outcomeInvalid:
		t.Invalid++
	}
}

// Total returns the number of records counted.
func (t Tally) Total() int {
	return t.New + t.Changed + t.Skipped + t.Recovered + t.Corrupt + t.Invalid
}

// ConferenceTally counts venues by what happened to them.
type ConferenceTally struct {
	Walked  int `json:"walked" yaml:"walked"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`

	// Incomplete venues had records that could not be stored.
	Incomplete int `json:"incomplete" yaml:"incomplete"`
}

// Summary holds the counters of one crawl.
type Summary struct {
	Conferences ConferenceTally `json:"conferences" yaml:"conferences"`
	Papers      Tally           `json:"papers" yaml:"papers"`
	Reviews     Tally           `json:"reviews" yaml:"reviews"`
	Authors     Tally           `json:"authors" yaml:"authors"`

	// Stubs counts authors recorded without a full profile.
	Stubs int `json:"stubs" yaml:"stubs"`

	// ProfileFailures counts profile fetches that failed and fell back to a stub.
	ProfileFailures int `json:"profile_failures" yaml:"profile_failures"`
}

// HasFailures reports whether any venue or record could not be processed.
func (s Summary) HasFailures() bool {
	return s.Conferences.Failed+s.Conferences.Incomplete > 0 || s.unprocessed() > 0
}

func (s Summary) unprocessed() int {
	return s.Papers.Corrupt + s.Papers.Invalid +
		s.Reviews.Corrupt + s.Reviews.Invalid +
		s.Authors.Corrupt + s.Authors.Invalid
}

// Fprint writes a human-readable summary to w.
func (s Summary) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\nCrawl summary:\n")
	fmt.Fprintf(w, "  conferences: %d walked, %d skipped, %d failed, %d incomplete\n",
		s.Conferences.Walked, s.Conferences.Skipped, s.Conferences.Failed, s.Conferences.Incomplete)
	for _, row := range []struct {
		name string
		t    Tally
	}{
		{"papers", s.Papers},
		{"reviews", s.Reviews},
		{"authors", s.Authors},
	} {
		fmt.Fprintf(w, "  %-11s  %d new, %d changed, %d skipped, %d recovered, %d corrupt, %d invalid\n",
			row.name+":", row.t.New, row.t.Changed, row.t.Skipped, row.t.Recovered, row.t.Corrupt, row.t.Invalid)
	}
	fmt.Fprintf(w, "  stub profiles: %d (%d fetch failures)\n", s.Stubs, s.ProfileFailures)
}
