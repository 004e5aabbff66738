package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all pipeline settings.
const envPrefix = "ENZYMESET"

// newViper builds a pre-configured Viper instance: YAML file type,
// ENZYMESET_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so nested keys like "paths.reactions" resolve to
// ENZYMESET_PATHS_REACTIONS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// envKeys lists every key that may be set purely through the environment.
// Viper only surfaces automatic env values during Unmarshal for keys it
// already knows about, so each one is bound explicitly.
var envKeys = []string{
	"paths.reactions", "paths.sequences", "paths.ec_index", "paths.clusters", "paths.organic",
	"split.strategy", "split.seed", "split.ec_level",
	"split.proportions.train", "split.proportions.dev", "split.proportions.test",
	"build.variant", "build.max_protein_length", "build.max_reactant_size",
	"build.max_product_size", "build.max_reaction_string", "build.require_atom_mapped",
	"build.ec_level",
	"sampler.seed", "sampler.shuffle_order", "sampler.randomize_smiles",
	"sampler.attach_features", "sampler.attach_annotations", "sampler.hidden_dim",
	"cache.backend", "cache.key_prefix", "cache.ttl",
	"cache.file.features_dir", "cache.file.annotations_dir",
	"cache.redis.addr", "cache.redis.username", "cache.redis.password", "cache.redis.db",
	"metrics.enabled", "metrics.namespace", "metrics.listen_addr",
	"log.level", "log.format",
}

func bindEnvKeys(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges ENZYMESET_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from ENZYMESET_* environment
// variables, with no config file required.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Intended for hot-reloadable
// settings such as the log level and sampler augmentation flags; callers
// decide which subset is safe to apply mid-run.
//
// Watch is non-blocking; the watcher goroutine is managed by viper.  A
// changed file that fails to parse or validate does not invoke onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on any error.  For use in main, where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
