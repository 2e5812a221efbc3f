// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-harvester CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-harvester/internal/config"
	"github.com/pdiddy/review-harvester/internal/contentstore"
	"github.com/pdiddy/review-harvester/internal/index"
	"github.com/pdiddy/review-harvester/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the review-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "review-harvester",
	Short: "Incrementally harvest OpenReview venues into a local cache and index",
	Long: `review-harvester mirrors OpenReview conferences, submissions, reviews
and author profiles into canonical JSON blobs under the data directory and a
SQLite index beside them. Re-runs only fetch what is not yet indexed and only
rewrite blobs whose content changed.

Use crawl to harvest, coauthors to query collaborations, verify to audit the
blobs against the index and stats for row counts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSecrets(config.DefaultSecretsDir, os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-harvester.yaml or ~/.config/review-harvester/review-harvester.yaml)")
	rootCmd.PersistentFlags().String("data-dir", config.DefaultDataDir, "directory holding profiles/, papers/, reviews/ and the database")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging to stderr")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-harvester")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-harvester"))
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged flags, file, environment and secrets.
func loadConfig() (types.HarvestConfig, error) {
	return config.Load(viper.GetViper(), loadedSecrets)
}

// openData opens the blob store and the index named by cfg. The caller
// closes the index.
func openData(ctx context.Context, cfg types.HarvestConfig) (*contentstore.Store, *index.Index, error) {
	store, err := contentstore.Open(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	ix, err := index.Open(ctx, config.DBPath(cfg))
	if err != nil {
		return nil, nil, err
	}
	return store, ix, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
