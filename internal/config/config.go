// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatasetPath points at a JSON or YAML ratings file. Empty selects the
	// embedded critics dataset.
	DatasetPath string `koanf:"dataset_path"`

	// DefaultTopN is used by GET /matches when n is not given.
	DefaultTopN int `koanf:"default_top_n" validate:"gte=1"`

	// MaxTopN caps GET /matches?n.
	MaxTopN int `koanf:"max_top_n" validate:"gtefield=DefaultTopN"`

	// RecommendParallelism bounds the recommendation fan-out. 1 runs sequentially.
	RecommendParallelism int `koanf:"recommend_parallelism" validate:"gte=1,lte=1024"`

	// SimilarityCacheSize is the number of rater pairs memoised. 0 disables the cache.
	SimilarityCacheSize int `koanf:"similarity_cache_size" validate:"gte=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DefaultTopN:          5,
		MaxTopN:              100,
		RecommendParallelism: runtime.NumCPU(),
		SimilarityCacheSize:  4096,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and cross-field rules.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
