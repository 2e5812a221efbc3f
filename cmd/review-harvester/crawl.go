// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/review-harvester/internal/crawler"
	"github.com/pdiddy/review-harvester/internal/logging"
	"github.com/pdiddy/review-harvester/internal/metrics"
	"github.com/pdiddy/review-harvester/internal/openreview"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Harvest venues, submissions, reviews and author profiles",
	Long: `Crawl walks every venue (or the configured venues), fetches each
submission with its direct replies and the profile of every author not yet
indexed. Payloads are stored as canonical JSON blobs and indexed in SQLite.
Venues already recorded are skipped; a venue is recorded only once all of its
submissions were stored, so an interrupted venue is walked again next time.

SIGINT or SIGTERM stops the crawl after the current call; everything
committed so far is kept.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringSlice("venue", nil, "venue id to crawl (repeatable; default: every venue the remote lists)")
	crawlCmd.Flags().String("base-url", "", "OpenReview API root")
	crawlCmd.Flags().Duration("delay", 0, "fixed pause before each remote call (default 100ms)")
	crawlCmd.Flags().Float64("rate", 0, "requests per second; replaces --delay with a token bucket when positive")
	crawlCmd.Flags().Int("burst", 0, "token bucket size used with --rate")
	crawlCmd.Flags().String("metrics-file", "", "write Prometheus text-format counters here after the crawl")

	viper.BindPFlag("venues", crawlCmd.Flags().Lookup("venue"))
	viper.BindPFlag("remote.base_url", crawlCmd.Flags().Lookup("base-url"))
	viper.BindPFlag("pacing.delay", crawlCmd.Flags().Lookup("delay"))
	viper.BindPFlag("pacing.rate", crawlCmd.Flags().Lookup("rate"))
	viper.BindPFlag("pacing.burst", crawlCmd.Flags().Lookup("burst"))
	viper.BindPFlag("metrics_file", crawlCmd.Flags().Lookup("metrics-file"))

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger = logging.WithRun(logger, logging.NewRunID())

	store, ix, err := openData(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ix.Close(); err != nil {
			logger.Error("closing index", zap.Error(err))
		}
	}()

	rec := metrics.New()
	c, err := crawler.New(crawler.Options{
		Remote:  openreview.New(cfg.Remote, nil),
		Store:   store,
		Index:   ix,
		Pacer:   crawler.NewPacer(cfg.Pacing),
		Logger:  logger,
		Metrics: rec,
		Venues:  cfg.Venues,
	})
	if err != nil {
		return err
	}

	summary, runErr := c.Run(ctx)
	summary.Fprint(os.Stdout)

	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("writing metrics", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("crawl stopped: %w", runErr)
	}
	if summary.HasFailures() {
		return fmt.Errorf("crawl finished with %d failed and %d incomplete conference(s)",
			summary.Conferences.Failed, summary.Conferences.Incomplete)
	}
	return nil
}
