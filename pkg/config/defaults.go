package config

import "time"

// Default returns a Config populated with default values for every
// section. Loading merges file and environment values over this base.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			PackDir:          "./packs",
			Watch:            false,
			DebounceInterval: 100 * time.Millisecond,
			MaxFileSize:      10 * 1024 * 1024,
		},
		Selector: SelectorConfig{
			ReviewGapThreshold: 10,
		},
		Rules: RulesConfig{
			LowConfidenceThreshold: 0.70,
			MinCommentLength:       10,
		},
		Fixtures: FixturesConfig{
			CaseTimeout:    5 * time.Second,
			PackTimeout:    60 * time.Second,
			MaxConcurrency: 4,
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
			MaxBytes:   64 * 1024 * 1024,
			TTL:        time.Hour,
		},
		Audit: AuditConfig{
			Backend: "memory",
			SQLite: SQLiteConfig{
				Path:        "./audit.db",
				BusyTimeout: 5 * time.Second,
			},
			Retention: RetentionConfig{
				Enabled:  false,
				MaxAge:   90 * 24 * time.Hour,
				Schedule: "0 3 * * *",
			},
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
			Metrics: MetricsConfig{
				Enabled:   true,
				Namespace: "saturn",
			},
		},
	}
}
