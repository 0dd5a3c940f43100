package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/cli"
	"veridian-hq/saturn/pkg/telemetry/health"
	"veridian-hq/saturn/pkg/telemetry/metrics"
	"veridian-hq/saturn/pkg/template/registry"
)

var watchMetricsListen string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch spec packs for changes and hot-reload the registry",
	Long: `Watch the configured pack directory for changes. On each debounced
change the packs are reloaded into a fresh registry, validated, and
swapped in atomically; a broken pack never replaces a working registry.

Registry state is exported as Prometheus metrics on --metrics-listen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}

		reg, err := buildRegistry(cfg, logger)
		if err != nil {
			return cli.NewCommandError("watch", err)
		}

		m := metrics.New(cfg.Telemetry.Metrics.Namespace)
		promReg := prometheus.NewRegistry()
		if cfg.Telemetry.Metrics.Enabled {
			if err := m.Register(promReg); err != nil {
				return cli.NewCommandError("watch", err)
			}
		}
		updateRegistryMetrics(m, reg)

		if watchMetricsListen != "" {
			mux := http.NewServeMux()
			if cfg.Telemetry.Metrics.Enabled {
				mux.Handle("/metrics", metrics.Handler(promReg))
			}

			checker := health.New(0)
			checker.RegisterCheck("registry", func(context.Context) error {
				if len(reg.ActiveTemplates()) == 0 {
					return fmt.Errorf("registry has no active templates")
				}
				return nil
			})
			health.Register(mux, checker)

			go func() {
				logger.Info("telemetry endpoint listening", "address", watchMetricsListen)
				if err := http.ListenAndServe(watchMetricsListen, mux); err != nil {
					logger.Error("telemetry endpoint failed", "error", err)
				}
			}()
		}

		watcher, err := registry.NewPackWatcher(&registry.PackWatcherConfig{
			Path:             cfg.Registry.PackDir,
			DebounceInterval: cfg.Registry.DebounceInterval,
			Extensions:       []string{".yaml", ".yml"},
			SkipHidden:       true,
		}, logger.With("component", "pack.watcher"))
		if err != nil {
			return cli.NewCommandError("watch", err)
		}

		ctx := cli.SetupSignalHandler()

		fmt.Printf("watching %s (registry version %s, %d registrations)\n",
			cfg.Registry.PackDir, reg.Version(), reg.Count())

		err = watcher.Watch(ctx, func() error {
			// Build and validate the replacement off to the side, then
			// swap atomically.
			fresh, err := buildRegistry(cfg, logger)
			if err != nil {
				return err
			}
			reg.Replace(fresh)
			updateRegistryMetrics(m, reg)
			logger.Info("registry reloaded",
				"version", reg.Version(),
				"registrations", reg.Count(),
			)
			return nil
		})
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		return nil
	},
}

// updateRegistryMetrics refreshes the per-status template gauges.
func updateRegistryMetrics(m *metrics.Metrics, reg *registry.Registry) {
	counts := map[registry.Status]int{}
	for _, r := range reg.ListRegistrations() {
		counts[r.Status]++
	}
	for _, status := range []registry.Status{registry.StatusActive, registry.StatusInactive, registry.StatusDeprecated} {
		m.RegistryTemplates.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsListen, "metrics-listen", ":9090", "address for the Prometheus metrics endpoint")
	rootCmd.AddCommand(watchCmd)
}
