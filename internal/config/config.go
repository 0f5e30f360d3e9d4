// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and HOPGRAPH_ environment variables over them.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the record store: memory, postgres or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseDSN is the connection string of the postgres or sqlite store.
	DatabaseDSN string `koanf:"database_dsn"`

	// SnapshotPath is a YAML snapshot loaded by the memory store, or
	// imported into an empty relational store.
	SnapshotPath string `koanf:"snapshot_path"`

	// AutoMigrate creates missing tables in a relational store.
	AutoMigrate bool `koanf:"auto_migrate"`

	// DefaultHops and MaxHops bound the hop depth of transition queries.
	DefaultHops int `koanf:"default_hops"`
	MaxHops     int `koanf:"max_hops"`

	// FuzzyThreshold is the minimum similarity for role and department filters.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// DirectoryMinScore is the minimum score for resolving company and
	// college names against the directory.
	DirectoryMinScore float64 `koanf:"directory_min_score"`

	// NearMeYears is the tolerance, in years, of the near-me tenure option.
	NearMeYears int `koanf:"near_me_years"`

	// CloseBatchYears is the start-year tolerance of the close batch option.
	CloseBatchYears int `koanf:"close_batch_years"`

	// RelatedConcurrency bounds the destinations processed in parallel.
	RelatedConcurrency int `koanf:"related_concurrency"`

	// SearchLimit caps organization search results.
	SearchLimit int `koanf:"search_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreDriver:        "memory",
		DefaultHops:        3,
		MaxHops:            10,
		FuzzyThreshold:     60,
		DirectoryMinScore:  78,
		NearMeYears:        2,
		CloseBatchYears:    4,
		RelatedConcurrency: 4,
		SearchLimit:        50,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !oneOf(c.LogFormat, "text", "json"):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case !oneOf(c.LogLevel, "debug", "info", "warn", "warning", "error"):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case !oneOf(c.StoreDriver, "memory", "postgres", "sqlite"):
		return fmt.Errorf("%w: store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver != "memory" && c.DatabaseDSN == "":
		return fmt.Errorf("%w: %w for %s", ErrInvalidConfig, ErrMissingDSN, c.StoreDriver)
	case c.MaxHops < 1:
		return fmt.Errorf("%w: max_hops must be positive", ErrInvalidConfig)
	case c.DefaultHops < 1 || c.DefaultHops > c.MaxHops:
		return fmt.Errorf("%w: default_hops must be between 1 and max_hops", ErrInvalidConfig)
	case c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 100:
		return fmt.Errorf("%w: fuzzy_threshold must be in (0, 100]", ErrInvalidConfig)
	case c.DirectoryMinScore <= 0 || c.DirectoryMinScore > 100:
		return fmt.Errorf("%w: directory_min_score must be in (0, 100]", ErrInvalidConfig)
	case c.NearMeYears < 0:
		return fmt.Errorf("%w: near_me_years must not be negative", ErrInvalidConfig)
	case c.CloseBatchYears < 0:
		return fmt.Errorf("%w: close_batch_years must not be negative", ErrInvalidConfig)
	case c.RelatedConcurrency < 1:
		return fmt.Errorf("%w: related_concurrency must be positive", ErrInvalidConfig)
	case c.SearchLimit < 1:
		return fmt.Errorf("%w: search_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
