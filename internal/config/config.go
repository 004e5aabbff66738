// Package config defines the configuration structures for the enzymeset
// pipeline.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"

	"github.com/biocatlab/enzymeset/internal/application/builder"
	"github.com/biocatlab/enzymeset/internal/application/sampler"
	"github.com/biocatlab/enzymeset/internal/application/splitter"
	"github.com/biocatlab/enzymeset/internal/infrastructure/cache"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
)

// PathsConfig locates the raw metadata files.
type PathsConfig struct {
	// Reactions is the JSON reaction corpus.
	Reactions string `mapstructure:"reactions"`
	// Sequences maps UniProt ID to amino-acid sequence.
	Sequences string `mapstructure:"sequences"`
	// ECIndex maps EC code to catalyzing UniProt IDs.
	ECIndex string `mapstructure:"ec_index"`
	// Clusters maps UniProt ID to mmseqs cluster; optional.
	Clusters string `mapstructure:"clusters"`
	// Organic is an optional uncatalyzed-reaction corpus merged at build time.
	Organic string `mapstructure:"organic"`
}

// CacheConfig selects and parameterizes the side-cache backend.
type CacheConfig struct {
	// Backend is "none", "file", or "redis".  The redis backend layers over
	// the file backend as its loader.
	Backend string `mapstructure:"backend"`

	File  cache.FileConfig  `mapstructure:"file"`
	Redis cache.RedisConfig `mapstructure:"redis"`

	// KeyPrefix namespaces redis keys.
	KeyPrefix string `mapstructure:"key_prefix"`
	// TTL bounds how long redis retains an artifact.
	TTL time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds the Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	// ListenAddr serves /metrics when non-empty (long-running sampling jobs).
	ListenAddr string `mapstructure:"listen_addr"`
}

// Config is the root configuration for the pipeline.
type Config struct {
	Paths   PathsConfig       `mapstructure:"paths"`
	Split   splitter.Config   `mapstructure:"split"`
	Build   builder.Config    `mapstructure:"build"`
	Sampler sampler.Config    `mapstructure:"sampler"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	Log     logging.LogConfig `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// Callers treat any error as fatal and refuse to start.
func (c *Config) Validate() error {
	// Paths
	if c.Paths.Reactions == "" {
		return fmt.Errorf("config: paths.reactions is required")
	}
	if c.Paths.Sequences == "" {
		return fmt.Errorf("config: paths.sequences is required")
	}
	if c.Paths.ECIndex == "" {
		return fmt.Errorf("config: paths.ec_index is required")
	}

	// Split
	validStrategy := false
	for _, s := range splitter.KeyedStrategies {
		if c.Split.Strategy == s {
			validStrategy = true
			break
		}
	}
	if !validStrategy {
		return fmt.Errorf("config: split.strategy %q is invalid", c.Split.Strategy)
	}
	if err := c.Split.Proportions.Validate(); err != nil {
		return fmt.Errorf("config: split.proportions: %w", err)
	}
	if c.Split.ECLevel < 0 || c.Split.ECLevel > 3 {
		return fmt.Errorf("config: split.ec_level %d is out of range [0, 3]", c.Split.ECLevel)
	}

	// Build
	switch c.Build.Variant {
	case builder.VariantPooled, builder.VariantExpanded:
	default:
		return fmt.Errorf("config: build.variant %q is invalid; expected pooled|expanded", c.Build.Variant)
	}
	if c.Build.MaxProteinLength < 0 {
		return fmt.Errorf("config: build.max_protein_length must be >= 0, got %d", c.Build.MaxProteinLength)
	}

	// Sampler
	if c.Sampler.HiddenDim < 0 {
		return fmt.Errorf("config: sampler.hidden_dim must be >= 0, got %d", c.Sampler.HiddenDim)
	}

	// Cache
	switch c.Cache.Backend {
	case "none", "file":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("config: cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: cache.backend %q is invalid; expected none|file|redis", c.Cache.Backend)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
