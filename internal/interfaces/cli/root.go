// Package cli wires the pipeline into the enzymeset command tree: `split`
// computes and reports a split assignment, `build` constructs a dataset
// split, and `sample` draws items through the per-item sampler as a smoke
// test.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biocatlab/enzymeset/internal/config"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/prometheus"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Verbose    bool
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *prometheus.PipelineMetrics
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "enzymeset",
		Short:   "Enzyme-reaction dataset splitting and construction",
		Long:    "enzymeset pairs enzyme-catalyzed reaction records with catalyzing protein\nsequences and produces filtered, split-assigned, augmentation-ready training\nsamples.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./enzymeset.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		NewSplitCmd(),
		NewBuildCmd(),
		NewSampleCmd(),
	)
	return cmd
}

// persistentPreRun loads config and initializes the logger and metrics, then
// stores the CLIContext on the command context for subcommands.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)

	metrics := prometheus.NewNopPipelineMetrics()
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: "pipeline",
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics initialization failed: %w", err)
		}
		metrics = prometheus.NewPipelineMetrics(collector)
		if addr := cfg.Metrics.ListenAddr; addr != "" {
			serveMetrics(addr, collector, logger)
		}
	}

	cliCtx := &CLIContext{Config: cfg, Logger: logger, Metrics: metrics}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// serveMetrics exposes /metrics in the background for long-running build and
// sampling jobs.  The server dies with the process; commands are one-shot so
// no graceful shutdown is needed.
func serveMetrics(addr string, collector prometheus.MetricsCollector, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics endpoint stopped", logging.Err(err))
		}
	}()
	logger.Info("metrics endpoint listening", logging.String("addr", addr))
}

// initConfig loads configuration with priority: flag > search paths > env.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./enzymeset.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".enzymeset", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/enzymeset/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// initLogger creates a console logger on stderr so stdout stays
// machine-readable for dataset dumps.
func initLogger(cfg *config.Config) (logging.Logger, error) {
	logCfg := cfg.Log
	logCfg.Format = "console"
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	return logging.NewLogger(logCfg)
}

// GetCLIContext extracts the CLIContext stored by persistentPreRun.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	v := cmd.Context().Value(cliContextKey{})
	cliCtx, ok := v.(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("cli context not initialized")
	}
	return cliCtx, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
