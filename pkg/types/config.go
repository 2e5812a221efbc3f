package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings for the remote client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "review-harvester/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RemoteConfig holds settings for the OpenReview API client.
type RemoteConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root (default https://api2.openreview.net).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the number of notes requested per submissions page (default 1000).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// Token is an optional bearer token, normally loaded from .secrets/.
	Token string `json:"-" yaml:"-" mapstructure:"token"`
}

// PacingConfig selects the delay policy applied before every remote call.
type PacingConfig struct {
	// Delay is the fixed pause before each call (default 100ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// Rate, when positive, replaces Delay with a token bucket of Rate
	// requests per second.
	Rate float64 `json:"rate" yaml:"rate" mapstructure:"rate"`

	// Burst is the token bucket size (default 1).
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// HarvestConfig groups everything a crawl needs.
type HarvestConfig struct {
	// DataDir is the root holding profiles/, papers/, reviews/ and the database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// DBFile is the SQLite file name inside DataDir (default openreview.db).
	DBFile string `json:"db_file" yaml:"db_file" mapstructure:"db_file"`

	Remote RemoteConfig `json:"remote" yaml:"remote" mapstructure:"remote"`
	Pacing PacingConfig `json:"pacing" yaml:"pacing" mapstructure:"pacing"`

	// Venues restricts the crawl to these venue ids. Empty crawls every
	// venue the remote lists.
	Venues []string `json:"venues" yaml:"venues" mapstructure:"venues"`

	// MetricsFile, when set, receives Prometheus text-format counters at
	// the end of a crawl.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file" mapstructure:"metrics_file"`

	// Verbose switches to the development logger at debug level.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

// Validate reports the first invalid setting.
func (c HarvestConfig) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("data_dir is required")
	case c.DBFile == "":
		return fmt.Errorf("db_file is required")
	case c.Remote.BaseURL == "":
		return fmt.Errorf("remote.base_url is required")
	case c.Remote.PageSize <= 0:
		return fmt.Errorf("remote.page_size must be positive, got %d", c.Remote.PageSize)
	case c.Pacing.Delay < 0:
		return fmt.Errorf("pacing.delay must not be negative, got %v", c.Pacing.Delay)
	case c.Pacing.Rate < 0:
		return fmt.Errorf("pacing.rate must not be negative, got %v", c.Pacing.Rate)
	}
	return nil
}
