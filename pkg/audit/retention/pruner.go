// Package retention enforces audit-record retention: a pruner deletes
// records past their retention age, and a cron scheduler runs it on a
// configured cadence.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veridian-hq/saturn/pkg/audit"
)

// Config contains retention configuration.
type Config struct {
	// MaxAge is the maximum record age. Zero disables age pruning.
	MaxAge time.Duration

	// Schedule is the cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables scheduling.
	Schedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAge:   90 * 24 * time.Hour,
		Schedule: "0 3 * * *",
	}
}

// Pruner deletes audit records past the retention age.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a retention pruner.
func NewPruner(storage audit.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default().With("component", "audit.retention")
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// Prune deletes records older than the retention age and returns the
// number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.MaxAge <= 0 {
		p.logger.Debug("retention age not configured, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().Add(-p.config.MaxAge)
	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit records: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("audit records pruned",
			"deleted_count", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	} else {
		p.logger.Debug("no audit records pruned", "cutoff", cutoff.Format(time.RFC3339))
	}

	return deleted, nil
}
