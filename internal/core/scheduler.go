package core

// scheduler.go runs background maintenance for the upload history.
//
// Summaries older than the retention period are removed on a fixed interval.
// The job is context-aware for graceful shutdown and logs failures without
// stopping, so a database hiccup only delays the next prune.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls the history prune job.
type RetentionConfig struct {
	Retention time.Duration // Age after which summaries are removed
	Interval  time.Duration // How often to run (default: 24h)
}

// DefaultPruneInterval is used when RetentionConfig.Interval is not positive.
const DefaultPruneInterval = 24 * time.Hour

// RunHistoryRetention prunes old summaries immediately and then every
// Interval until ctx is cancelled. It returns at once when retention is
// disabled or the history cannot be pruned.
func (s *Service) RunHistoryRetention(ctx context.Context, cfg RetentionConfig) {
	if cfg.Retention <= 0 {
		return
	}
	pruner, ok := s.history.(HistoryPruner)
	if !ok {
		slog.Warn("upload history does not support pruning, retention disabled")
		return
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPruneInterval
	}

	slog.Info("history retention started",
		"retention", cfg.Retention,
		"interval", cfg.Interval,
	)

	s.pruneHistory(ctx, pruner, cfg.Retention)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history retention stopped")
			return
		case <-ticker.C:
			s.pruneHistory(ctx, pruner, cfg.Retention)
		}
	}
}

// pruneHistory performs one prune cycle and reports how many rows went.
func (s *Service) pruneHistory(ctx context.Context, pruner HistoryPruner, retention time.Duration) int64 {
	start := time.Now()
	cutoff := s.now().Add(-retention)

	removed, err := pruner.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return 0
	}

	slog.Info("pruned upload history",
		"entries_removed", removed,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return removed
}
