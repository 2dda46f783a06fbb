// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the skos-index CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/skos-index/internal/engine"
	"github.com/pdiddy/skos-index/internal/index"
	"github.com/pdiddy/skos-index/internal/metric"
	"github.com/pdiddy/skos-index/internal/secrets"
	"github.com/pdiddy/skos-index/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics
)

// rootCmd is the base command for the skos-index CLI.
var rootCmd = &cobra.Command{
	Use:   "skos-index",
	Short: "Build and query a label index over a SKOS thesaurus",
	Long: `skos-index builds a persistent index over a SKOS thesaurus (Turtle,
N3, N-Triples or RDF/XML, optionally zipped or fetched over HTTP) and answers
label and relation queries against it.

The index is built on first use and reused afterwards; pass --rebuild to
force a new build, or --in-memory for a one-shot index that is never saved.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(viper.GetString("log_level"))); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		registry = prometheus.NewRegistry()
		m, err := metric.New(registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		metrics = m
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("metrics_textfile")
		if path == "" || registry == nil {
			return nil
		}
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./skos-index.yaml or ~/.config/skos-index/skos-index.yaml)")
	flags.String("source", "", "thesaurus file, .zip archive, or http(s) URL")
	flags.String("format", "", "source format: turtle, n3, ntriples, rdfxml (default: from extension)")
	flags.StringSlice("languages", nil, "label languages to keep (default: all)")
	flags.String("index-dir", types.DefaultIndexDir, "directory holding persisted indexes")
	flags.Bool("in-memory", false, "build an ephemeral index instead of using index-dir")
	flags.Bool("rebuild", false, "rebuild the index even if one exists")
	flags.String("secrets-dir", secrets.DefaultDir, "directory holding credential files")
	flags.Duration("timeout", 0, "HTTP timeout for remote sources (0 = none)")
	flags.String("user-agent", "skos-index/"+version, "User-Agent for remote sources")
	flags.Int("max-retries", 0, "retries on HTTP 429 for remote sources (0 = default 5)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")

	for key, flag := range map[string]string{
		"source":           "source",
		"format":           "format",
		"languages":        "languages",
		"index_dir":        "index-dir",
		"in_memory":        "in-memory",
		"rebuild":          "rebuild",
		"secrets_dir":      "secrets-dir",
		"timeout":          "timeout",
		"user_agent":       "user-agent",
		"max_retries":      "max-retries",
		"log_level":        "log-level",
		"metrics_textfile": "metrics-textfile",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("skos-index")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "skos-index"))
		}
	}

	viper.SetEnvPrefix("SKOS_INDEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// indexConfig assembles the build configuration from flags, environment
// and config file.
func indexConfig() types.IndexConfig {
	return types.IndexConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("timeout"),
			UserAgent:  viper.GetString("user_agent"),
			MaxRetries: viper.GetInt("max_retries"),
		},
		Source:     viper.GetString("source"),
		Format:     types.SourceFormat(viper.GetString("format")),
		Languages:  viper.GetStringSlice("languages"),
		IndexDir:   viper.GetString("index_dir"),
		InMemory:   viper.GetBool("in_memory"),
		Rebuild:    viper.GetBool("rebuild"),
		SecretsDir: viper.GetString("secrets_dir"),
	}
}

// openEngine builds or reuses the index described by the configuration.
func openEngine(ctx context.Context) (*engine.Engine, index.BuildReport, error) {
	cfg := indexConfig()
	if cfg.Source == "" {
		return nil, index.BuildReport{}, fmt.Errorf("--source is required")
	}
	return engine.Build(ctx, cfg, engine.Options{Logger: logger, Metrics: metrics})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
