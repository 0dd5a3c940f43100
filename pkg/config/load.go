package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from an optional YAML file, applies
// SATURN_* environment overrides, validates, and returns the result.
// An empty path skips the file step and yields defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies SATURN_* environment variables over the
// loaded configuration. Unparseable values are ignored in favor of the
// existing value; validation catches anything out of range afterwards.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SATURN_REGISTRY_PACK_DIR"); v != "" {
		cfg.Registry.PackDir = v
	}
	if v := os.Getenv("SATURN_REGISTRY_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Registry.Watch = b
		}
	}
	if v := os.Getenv("SATURN_REGISTRY_DEBOUNCE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Registry.DebounceInterval = d
		}
	}
	if v := os.Getenv("SATURN_SELECTOR_REVIEW_GAP_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Selector.ReviewGapThreshold = n
		}
	}
	if v := os.Getenv("SATURN_RULES_LOW_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Rules.LowConfidenceThreshold = f
		}
	}
	if v := os.Getenv("SATURN_RULES_MIN_COMMENT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Rules.MinCommentLength = n
		}
	}
	if v := os.Getenv("SATURN_FIXTURES_CASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fixtures.CaseTimeout = d
		}
	}
	if v := os.Getenv("SATURN_FIXTURES_PACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fixtures.PackTimeout = d
		}
	}
	if v := os.Getenv("SATURN_FIXTURES_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fixtures.MaxConcurrency = n
		}
	}
	if v := os.Getenv("SATURN_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxEntries = n
		}
	}
	if v := os.Getenv("SATURN_CACHE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cache.MaxBytes = n
		}
	}
	if v := os.Getenv("SATURN_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("SATURN_AUDIT_BACKEND"); v != "" {
		cfg.Audit.Backend = v
	}
	if v := os.Getenv("SATURN_AUDIT_SQLITE_PATH"); v != "" {
		cfg.Audit.SQLite.Path = v
	}
	if v := os.Getenv("SATURN_AUDIT_RETENTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audit.Retention.Enabled = b
		}
	}
	if v := os.Getenv("SATURN_AUDIT_RETENTION_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Audit.Retention.MaxAge = d
		}
	}
	if v := os.Getenv("SATURN_AUDIT_RETENTION_SCHEDULE"); v != "" {
		cfg.Audit.Retention.Schedule = v
	}
	if v := os.Getenv("SATURN_LOG_LEVEL"); v != "" {
		cfg.Telemetry.Logging.Level = v
	}
	if v := os.Getenv("SATURN_LOG_FORMAT"); v != "" {
		cfg.Telemetry.Logging.Format = v
	}
	if v := os.Getenv("SATURN_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("SATURN_METRICS_NAMESPACE"); v != "" {
		cfg.Telemetry.Metrics.Namespace = v
	}
}
