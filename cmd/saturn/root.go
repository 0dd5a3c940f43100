package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/config"
	"veridian-hq/saturn/pkg/telemetry/logging"
	"veridian-hq/saturn/pkg/template/registry"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "saturn",
	Short: "Saturn - job-sheet document validation service",
	Long: `Saturn validates scanned engineering job-sheet documents against
versioned document templates.

It provides:
  - Versioned, content-hashed template spec packs with lifecycle gating
  - Token-fingerprint template selection with a safety policy
  - Documentation-quality rule evaluation with canonical reason codes
  - Fixture-based activation gating and regression checks`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration, applying the verbose flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// buildLogger creates the process logger from configuration.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    os.Stderr,
	})
}

// buildRegistry loads every spec pack under the configured pack
// directory into a fresh registry.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.New(logger.With("component", "template.registry"))

	loader := registry.NewPackLoader(&registry.PackLoaderConfig{
		MaxFileSize:       cfg.Registry.MaxFileSize,
		AllowedExtensions: []string{".yaml", ".yml"},
		SkipHidden:        true,
	})

	packs, err := loader.LoadFromDirectory(cfg.Registry.PackDir)
	if err != nil && len(packs) == 0 {
		return nil, err
	}
	if err != nil {
		logger.Warn("some pack files failed to load", "error", err)
	}

	for _, pack := range packs {
		if _, err := reg.LoadPack(pack); err != nil {
			logger.Warn("spec pack rejected", "pack_id", pack.PackID, "error", err)
		}
	}

	return reg, nil
}
