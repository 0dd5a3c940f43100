package config

import (
	"fmt"
	"strings"
)

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every invalid value found in one pass.
type ValidationErrors []*ValidationError

// Error returns all messages joined.
func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	if c.Registry.PackDir == "" {
		add("registry.pack_dir", "cannot be empty")
	}
	if c.Registry.DebounceInterval < 0 {
		add("registry.debounce_interval", "cannot be negative")
	}
	if c.Registry.MaxFileSize <= 0 {
		add("registry.max_file_size", "must be positive")
	}

	if c.Selector.ReviewGapThreshold <= 0 {
		add("selector.review_gap_threshold", "must be positive")
	}

	if c.Rules.LowConfidenceThreshold <= 0 || c.Rules.LowConfidenceThreshold > 1 {
		add("rules.low_confidence_threshold", "must be in (0, 1]")
	}
	if c.Rules.MinCommentLength <= 0 {
		add("rules.min_comment_length", "must be positive")
	}

	if c.Fixtures.CaseTimeout <= 0 {
		add("fixtures.case_timeout", "must be positive")
	}
	if c.Fixtures.PackTimeout <= 0 {
		add("fixtures.pack_timeout", "must be positive")
	}
	if c.Fixtures.MaxConcurrency <= 0 {
		add("fixtures.max_concurrency", "must be positive")
	}

	if c.Cache.MaxEntries <= 0 {
		add("cache.max_entries", "must be positive")
	}
	if c.Cache.MaxBytes <= 0 {
		add("cache.max_bytes", "must be positive")
	}
	if c.Cache.TTL <= 0 {
		add("cache.ttl", "must be positive")
	}

	switch c.Audit.Backend {
	case "memory", "sqlite":
	default:
		add("audit.backend", fmt.Sprintf("unknown backend %q (expected memory or sqlite)", c.Audit.Backend))
	}
	if c.Audit.Backend == "sqlite" && c.Audit.SQLite.Path == "" {
		add("audit.sqlite.path", "cannot be empty when the sqlite backend is selected")
	}
	if c.Audit.Retention.Enabled {
		if c.Audit.Retention.MaxAge <= 0 {
			add("audit.retention.max_age", "must be positive when retention is enabled")
		}
		if c.Audit.Retention.Schedule == "" {
			add("audit.retention.schedule", "cannot be empty when retention is enabled")
		}
	}

	switch c.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", fmt.Sprintf("unknown level %q", c.Telemetry.Logging.Level))
	}
	switch c.Telemetry.Logging.Format {
	case "json", "text":
	default:
		add("telemetry.logging.format", fmt.Sprintf("unknown format %q", c.Telemetry.Logging.Format))
	}
	if c.Telemetry.Metrics.Enabled && c.Telemetry.Metrics.Namespace == "" {
		add("telemetry.metrics.namespace", "cannot be empty when metrics are enabled")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
