// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the harvest configuration from defaults, an
// optional YAML file, REVIEW_HARVESTER_* environment variables and the
// .secrets/ directory.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/review-harvester/pkg/types"
)

// EnvPrefix prefixes every environment override, with dots in keys
// replaced by underscores (REVIEW_HARVESTER_REMOTE_BASE_URL).
const EnvPrefix = "REVIEW_HARVESTER"

// TokenSecret is the .secrets/ file holding the optional API bearer token.
const TokenSecret = "openreview-token"

// Defaults used when nothing else sets a key.
const (
	DefaultDataDir   = "data"
	DefaultDBFile    = "openreview.db"
	DefaultBaseURL   = "https://api2.openreview.net"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "review-harvester/0.1"
	DefaultPageSize  = 1000
	DefaultDelay     = 100 * time.Millisecond
)

// SetDefaults registers every key with its default so environment
// overrides apply even when no config file sets the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("db_file", DefaultDBFile)
	v.SetDefault("remote.base_url", DefaultBaseURL)
	v.SetDefault("remote.timeout", DefaultTimeout)
	v.SetDefault("remote.user_agent", DefaultUserAgent)
	v.SetDefault("remote.page_size", DefaultPageSize)
	v.SetDefault("remote.token", "")
	v.SetDefault("pacing.delay", DefaultDelay)
	v.SetDefault("pacing.rate", 0.0)
	v.SetDefault("pacing.burst", 1)
	v.SetDefault("venues", []string{})
	v.SetDefault("metrics_file", "")
	v.SetDefault("verbose", false)
}

// BindEnv makes v read REVIEW_HARVESTER_* overrides.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v. A token from
// secrets fills remote.token when nothing else set it.
func Load(v *viper.Viper, secrets map[string]string) (types.HarvestConfig, error) {
	var cfg types.HarvestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Remote.Token == "" {
		cfg.Remote.Token = secrets[TokenSecret]
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DBPath returns the database file path. An absolute db_file is used as is.
func DBPath(cfg types.HarvestConfig) string {
	if filepath.IsAbs(cfg.DBFile) {
		return cfg.DBFile
	}
	return filepath.Join(cfg.DataDir, cfg.DBFile)
}
