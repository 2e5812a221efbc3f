// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-harvester/internal/config"
	"github.com/pdiddy/review-harvester/internal/index"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print row counts of the index",
	RunE:  runStats,
}

func init() {
	addFormatFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	ix, err := index.Open(ctx, config.DBPath(cfg))
	if err != nil {
		return err
	}
	defer ix.Close()

	counts, err := ix.Counts(ctx)
	if err != nil {
		return err
	}
	if format != "" {
		return writeStructured(os.Stdout, format, counts)
	}
	formatCounts(os.Stdout, ix.Path(), counts)
	return nil
}

func formatCounts(w io.Writer, path string, c index.Counts) {
	fmt.Fprintf(w, "Index: %s\n\n", path)
	fmt.Fprintf(w, "  %-12s %d\n", "conferences", c.Conferences)
	fmt.Fprintf(w, "  %-12s %d\n", "papers", c.Papers)
	fmt.Fprintf(w, "  %-12s %d\n", "reviews", c.Reviews)
	fmt.Fprintf(w, "  %-12s %d\n", "authors", c.Authors)
	fmt.Fprintf(w, "  %-12s %d\n", "edges", c.Edges)
}
