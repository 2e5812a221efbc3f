// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/review-harvester/internal/contentstore"
	"github.com/pdiddy/review-harvester/internal/index"
	"github.com/pdiddy/review-harvester/pkg/types"
)

// Report lists every disagreement between index rows and blobs.
type Report struct {
	Checked    int             `json:"checked" yaml:"checked"`
	Missing    []types.BlobRef `json:"missing" yaml:"missing"`
	Corrupt    []types.BlobRef `json:"corrupt" yaml:"corrupt"`
	Mismatched []types.BlobRef `json:"mismatched" yaml:"mismatched"`

	// Orphans are blobs no row references.
	Orphans []string `json:"orphans" yaml:"orphans"`
}

// Clean reports whether the audit found nothing.
func (r Report) Clean() bool {
	return len(r.Missing)+len(r.Corrupt)+len(r.Mismatched)+len(r.Orphans) == 0
}

// Fprint writes the findings to w.
func (r Report) Fprint(w io.Writer) {
	for _, group := range []struct {
		label string
		refs  []types.BlobRef
	}{
		{"missing", r.Missing},
		{"corrupt", r.Corrupt},
		{"mismatch", r.Mismatched},
	} {
		for _, ref := range group.refs {
			fmt.Fprintf(w, "%-8s  %s %s -> %s\n", group.label, ref.Table, ref.ID, ref.MetadataPath)
		}
	}
	for _, path := range r.Orphans {
		fmt.Fprintf(w, "orphan    %s\n", path)
	}
	fmt.Fprintf(w, "\nChecked %d rows: %d missing, %d corrupt, %d mismatched, %d orphan blobs\n",
		r.Checked, len(r.Missing), len(r.Corrupt), len(r.Mismatched), len(r.Orphans))
}

// Verify checks that every author, paper and review row points at a blob
// that exists, parses and hashes to the recorded digest, and that every
// blob is referenced by some row.
func Verify(ctx context.Context, ix *index.Index, store *contentstore.Store) (Report, error) {
	var report Report

	refs, err := ix.BlobRefs(ctx)
	if err != nil {
		return report, err
	}

	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		if ref.MetadataPath == "" {
			report.Missing = append(report.Missing, ref)
			continue
		}
		referenced[ref.MetadataPath] = struct{}{}

		digest, err := store.Digest(ref.MetadataPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			report.Missing = append(report.Missing, ref)
		case errors.Is(err, contentstore.ErrCorruptBlob):
			report.Corrupt = append(report.Corrupt, ref)
		case err != nil:
			return report, fmt.Errorf("reading blob %s: %w", ref.MetadataPath, err)
		case digest != ref.MetadataHash:
			report.Mismatched = append(report.Mismatched, ref)
		}
	}

	for _, kind := range contentstore.Kinds {
		paths, err := store.List(kind)
		if err != nil {
			return report, err
		}
		for _, path := range paths {
			if _, ok := referenced[path]; !ok {
				report.Orphans = append(report.Orphans, path)
			}
		}
	}
	return report, nil
}
