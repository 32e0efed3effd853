package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Compactable deletes blacklist rows revoked before cutoff.
type Compactable interface {
	Compact(ctx context.Context, cutoff time.Time) (int64, error)
}

// RevocationCompactor periodically drops blacklist rows whose tokens have all
// expired. A row revoked more than one refresh lifetime ago only holds tokens
// issued before that, so the codec already rejects them.
type RevocationCompactor struct {
	store    Compactable
	retain   time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewRevocationCompactor builds a compactor keeping rows for retain.
func NewRevocationCompactor(store Compactable, retain, interval time.Duration, logger *zap.Logger) *RevocationCompactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevocationCompactor{
		store:    store,
		retain:   retain,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce performs a single compaction pass.
func (c *RevocationCompactor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.retain)
	n, err := c.store.Compact(ctx, cutoff)
	if err != nil {
		c.logger.Warn("blacklist compaction failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		c.logger.Info("blacklist compacted", zap.Int64("rows", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

// Run compacts on every tick until ctx is done.
func (c *RevocationCompactor) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = c.RunOnce(ctx)
		}
	}
}
