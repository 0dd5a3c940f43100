// Package config defines the root configuration for the Saturn
// validation service and its loading, defaulting, and validation
// logic. There is no package-level singleton: the process entry point
// loads a Config once and passes it to every consumer.
package config

import "time"

// Config is the root configuration structure for Saturn. It contains
// all configuration sections for the template registry, selector,
// rules engine, fixture runner, cache, audit storage, and telemetry.
type Config struct {
	// Registry contains spec-pack loading and hot-reload settings.
	Registry RegistryConfig `yaml:"registry"`

	// Selector contains template-selection policy settings.
	Selector SelectorConfig `yaml:"selector"`

	// Rules contains rules-engine evaluation thresholds.
	Rules RulesConfig `yaml:"rules"`

	// Fixtures contains fixture-runner time budgets and concurrency.
	Fixtures FixturesConfig `yaml:"fixtures"`

	// Cache contains deterministic-cache bounds.
	Cache CacheConfig `yaml:"cache"`

	// Audit contains audit-record storage and retention settings.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RegistryConfig contains spec-pack registry configuration.
type RegistryConfig struct {
	// PackDir is the directory holding spec pack YAML files.
	// Default: "./packs"
	PackDir string `yaml:"pack_dir"`

	// Watch enables hot reload of spec packs on file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a watched change
	// triggers a reload.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the maximum pack file size in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`
}

// SelectorConfig contains template-selection configuration.
type SelectorConfig struct {
	// ReviewGapThreshold is the minimum score gap between the top
	// candidate and the runner-up for a medium-confidence auto-select.
	// Default: 10
	ReviewGapThreshold int `yaml:"review_gap_threshold"`
}

// RulesConfig contains rules-engine configuration.
type RulesConfig struct {
	// LowConfidenceThreshold flags present fields extracted below this
	// confidence.
	// Default: 0.70
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`

	// MinCommentLength is the minimum engineer-comment length accepted
	// as documentation evidence.
	// Default: 10
	MinCommentLength int `yaml:"min_comment_length"`
}

// FixturesConfig contains fixture-runner configuration.
type FixturesConfig struct {
	// CaseTimeout bounds each individual fixture case.
	// Default: 5s
	CaseTimeout time.Duration `yaml:"case_timeout"`

	// PackTimeout bounds a whole pack run.
	// Default: 60s
	PackTimeout time.Duration `yaml:"pack_timeout"`

	// MaxConcurrency bounds parallel case execution.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// CacheConfig contains deterministic-cache configuration.
type CacheConfig struct {
	// MaxEntries bounds the cache entry count.
	// Default: 1024
	MaxEntries int `yaml:"max_entries"`

	// MaxBytes bounds the total cached payload size.
	// Default: 67108864 (64MB)
	MaxBytes int64 `yaml:"max_bytes"`

	// TTL is the cache entry lifetime.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`
}

// AuditConfig contains audit-record storage configuration.
type AuditConfig struct {
	// Backend selects the audit storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains audit-record retention settings.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the SQLite database file path.
	// Default: "./audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains audit retention configuration.
type RetentionConfig struct {
	// Enabled turns on scheduled pruning of old audit records.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// MaxAge is the maximum audit record age before pruning.
	// Default: 2160h (90 days)
	MaxAge time.Duration `yaml:"max_age"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured-logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are registered.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "saturn"
	Namespace string `yaml:"namespace"`
}
