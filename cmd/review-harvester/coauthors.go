// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-harvester/internal/config"
	"github.com/pdiddy/review-harvester/internal/index"
	"github.com/pdiddy/review-harvester/pkg/types"
)

const dateLayout = "2006-01-02"

var coauthorsCmd = &cobra.Command{
	Use:   "coauthors <author-id>",
	Short: "List the co-authors of an author within a date window",
	Long: `Coauthors lists everyone who shares a harvested paper with the given
author, with the number of shared papers and the newest shared paper date.
Only the author's papers created inside [--from, --to] are considered.
Dates are YYYY-MM-DD (UTC; --to includes the whole day) or epoch milliseconds.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoauthors,
}

func init() {
	coauthorsCmd.Flags().String("from", "", "window start, YYYY-MM-DD or epoch ms (default: beginning of time)")
	coauthorsCmd.Flags().String("to", "", "window end, YYYY-MM-DD or epoch ms (default: now)")
	addFormatFlags(coauthorsCmd)

	rootCmd.AddCommand(coauthorsCmd)
}

func runCoauthors(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	from, to, err := dateWindow(fromFlag, toFlag, time.Now())
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

	rows, err := ix.QueryCoAuthors(ctx, args[0], from, to)
	if err != nil {
		return err
	}
	if format != "" {
		return writeStructured(os.Stdout, format, rows)
	}
	formatCoAuthors(os.Stdout, rows)
	return nil
}

// dateWindow resolves the --from and --to flags. An empty --to is now;
// every given value, 0 included, is taken literally.
func dateWindow(fromFlag, toFlag string, now time.Time) (from, to int64, err error) {
	from, err = parseDate(fromFlag, false)
	if err != nil {
		return 0, 0, fmt.Errorf("--from: %w", err)
	}
	if strings.TrimSpace(toFlag) == "" {
		return from, now.UnixMilli(), nil
	}
	to, err = parseDate(toFlag, true)
	if err != nil {
		return 0, 0, fmt.Errorf("--to: %w", err)
	}
	return from, to, nil
}

// parseDate accepts "", epoch milliseconds or YYYY-MM-DD. With endOfDay a
// calendar date resolves to its last millisecond. "" yields 0.
func parseDate(s string, endOfDay bool) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative timestamp %d", ms)
		}
		return ms, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: use YYYY-MM-DD or epoch milliseconds", s)
	}
	if endOfDay {
		return t.AddDate(0, 0, 1).UnixMilli() - 1, nil
	}
	return t.UnixMilli(), nil
}

func formatCoAuthors(w io.Writer, rows []types.CoAuthor) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No co-authors found.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-24s  %-20s  %-28s  %5s  %s\n",
		"ID", "Name", "Position", "Affiliation", "Count", "Last")
	fmt.Fprintln(w, strings.Repeat("-", 124))
	for _, r := range rows {
		fmt.Fprintf(w, "%-28s  %-24s  %-20s  %-28s  %5d  %s\n",
			truncate(r.ID, 28), truncate(r.Name, 24), truncate(r.Position, 20),
			truncate(r.Affiliation, 28), r.Count,
			time.UnixMilli(r.LastDate).UTC().Format(dateLayout))
	}
	fmt.Fprintf(w, "\n%d co-authors\n", len(rows))
}
