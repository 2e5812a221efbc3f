// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-harvester/internal/crawler"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every index row matches its blob",
	Long: `Verify reads the blob referenced by every author, paper and review row
and checks that it exists, parses and hashes to the recorded digest. Blobs
that no row references are reported as orphans. Exits non-zero on any finding.`,
	RunE: runVerify,
}

func init() {
	addFormatFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, ix, err := openData(ctx, cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	report, err := crawler.Verify(ctx, ix, store)
	if err != nil {
		return err
	}
	if format != "" {
		if err := writeStructured(os.Stdout, format, report); err != nil {
			return err
		}
	} else {
		report.Fprint(os.Stdout)
	}
	if !report.Clean() {
		return fmt.Errorf("verify found %d problem(s)",
			len(report.Missing)+len(report.Corrupt)+len(report.Mismatched)+len(report.Orphans))
	}
	return nil
}
