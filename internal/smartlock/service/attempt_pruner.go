package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartlock/gateway/internal/metrics"
	"github.com/smartlock/gateway/internal/smartlock/store"
)

// AttemptPruner periodically deletes audit records older than a
// configurable retention period.  The decision engine itself never
// deletes; retention is this separate policy.  It runs as a background
// goroutine and is safe to stop via its context or the Stop method.
//
// A retention of 0 disables pruning entirely.
type AttemptPruner struct {
	store     store.AttemptStore
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewAttemptPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of audit history to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs.  Defaults to 6.
	IntervalHours int
}

// NewAttemptPruner creates a pruner but does not start it.
// Call Start to begin the background loop.
func NewAttemptPruner(s store.AttemptStore, cfg PrunerConfig, logger zerolog.Logger) *AttemptPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &AttemptPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background pruning loop.  It runs an immediate prune
// on startup, then repeats on the configured interval.  The loop exits
// when ctx is cancelled or Stop is called.
func (p *AttemptPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Info().Msg("attempt pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info().
		Int("retention_days", int(p.retention.Hours()/24)).
		Int("interval_hours", int(p.interval.Hours())).
		Msg("attempt pruner started")
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *AttemptPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *AttemptPruner) loop(ctx context.Context) {
	defer close(p.done)

	// Run immediately on startup to clean up any backlog.
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *AttemptPruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error().Err(err).Msg("attempt prune failed")
		return
	}
	if deleted > 0 {
		metrics.PrunedAttemptsTotal.Add(float64(deleted))
		p.logger.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("attempt prune complete")
	}
}
