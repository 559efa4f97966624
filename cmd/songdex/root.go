package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/songdex"
	"github.com/hupe1980/songdex/internal/config"
	"github.com/hupe1980/songdex/promcollector"
)

var (
	flagConfig      string
	flagLibrary     string
	flagLogFormat   string
	flagLogLevel    string
	flagMetricsFile string

	cfg      *config.Config
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:          "songdex",
	Short:        "Index a music folder and search it",
	SilenceUsage: true,
	Long: `songdex keeps a memory-mapped index of the audio files in a music folder
in ~/.songdex/ and answers fuzzy artist, album and title queries.`,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: writeMetrics,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagConfig, "config", "", "Config file (default ~/.songdex/songdex.yaml)")
	f.StringVar(&flagLibrary, "library", "", "Library directory (overrides library_dir)")
	f.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json")
	f.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&flagMetricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")
}

// Execute is called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if flagLibrary != "" {
		if c.LibraryDir, err = config.ExpandPath(flagLibrary); err != nil {
			return err
		}
	}
	if flagLogFormat != "" {
		c.Log.Format = flagLogFormat
	}
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

func newLogger() (*songdex.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Log.Format == "json" {
		return songdex.NewJSONLogger(level), nil
	}
	return songdex.NewTextLogger(level), nil
}

// openLibrary opens the configured library. The caller must close it.
func openLibrary() (*songdex.Library, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	opts := []songdex.Option{
		songdex.WithLogger(logger),
		songdex.WithWorkers(cfg.Workers),
		songdex.WithSearchLimit(cfg.SearchLimit),
		songdex.WithExtractionRate(cfg.ExtractionRate, 0),
	}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, songdex.WithExtensions(cfg.Extensions...))
	}
	if flagMetricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, songdex.WithMetricsCollector(promcollector.New(registry)))
	}

	lib, err := songdex.Open(cfg.LibraryDir, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot open library %s: %w", cfg.LibraryDir, err)
	}
	return lib, nil
}

func writeMetrics(*cobra.Command, []string) error {
	if flagMetricsFile == "" || registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(flagMetricsFile, registry); err != nil {
		return fmt.Errorf("cannot write metrics: %w", err)
	}
	return nil
}
