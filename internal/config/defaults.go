package config

import (
	"time"

	"github.com/biocatlab/enzymeset/internal/application/builder"
	"github.com/biocatlab/enzymeset/internal/application/splitter"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// Default value constants.
const (
	DefaultSplitStrategy = splitter.StrategySequence
	DefaultSplitTrain    = 0.8
	DefaultSplitDev      = 0.1
	DefaultSplitTest     = 0.1
	DefaultECLevel       = 3

	DefaultVariant          = builder.VariantPooled
	DefaultMaxProteinLength = 650
	DefaultMaxReactantSize  = 300
	DefaultMaxProductSize   = 300

	// DefaultHiddenDim matches the pooled embedding width of the upstream
	// protein language model.
	DefaultHiddenDim = 1280

	DefaultCacheBackend = "file"
	DefaultKeyPrefix    = "enzymeset:"
	DefaultCacheTTL     = 6 * time.Hour

	DefaultMetricsNamespace = "enzymeset"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling and before Validate so that
// optional-but-defaulted fields are never seen as missing.  Fields already
// set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Split
	if cfg.Split.Strategy == "" {
		cfg.Split.Strategy = DefaultSplitStrategy
	}
	if cfg.Split.Proportions == (dataset.Proportions{}) {
		cfg.Split.Proportions = dataset.Proportions{
			Train: DefaultSplitTrain,
			Dev:   DefaultSplitDev,
			Test:  DefaultSplitTest,
		}
	}
	if cfg.Split.ECLevel == 0 && cfg.Split.Strategy != splitter.StrategyEC {
		// Level 0 is meaningful only when splitting on EC prefixes; elsewhere
		// the full code is the sane default for the derived sample keys.
		cfg.Split.ECLevel = DefaultECLevel
	}

	// Build
	if cfg.Build.Variant == "" {
		cfg.Build.Variant = DefaultVariant
	}
	if cfg.Build.MaxProteinLength == 0 {
		cfg.Build.MaxProteinLength = DefaultMaxProteinLength
	}
	if cfg.Build.MaxReactantSize == 0 {
		cfg.Build.MaxReactantSize = DefaultMaxReactantSize
	}
	if cfg.Build.MaxProductSize == 0 {
		cfg.Build.MaxProductSize = DefaultMaxProductSize
	}
	if cfg.Build.MaxReactionString == 0 {
		cfg.Build.MaxReactionString = builder.DefaultMaxReactionString
	}
	if cfg.Build.ECLevel == 0 {
		cfg.Build.ECLevel = cfg.Split.ECLevel
	}

	// Sampler
	if cfg.Sampler.Seed == 0 {
		cfg.Sampler.Seed = cfg.Split.Seed
	}
	if cfg.Sampler.HiddenDim == 0 {
		cfg.Sampler.HiddenDim = DefaultHiddenDim
	}

	// Cache
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	// Metrics
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
