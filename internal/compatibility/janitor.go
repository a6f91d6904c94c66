package compatibility

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically sweeps expired entries out of the profile cache so the
// reported cache size stays honest between lookups.
type Janitor struct {
	cache    ProfileCache
	interval time.Duration
	logger   *zap.Logger
}

func NewJanitor(cache ProfileCache, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{cache: cache, interval: interval, logger: logger}
}

// Start runs the sweep loop until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if evicted := j.cache.EvictStale(ctx); evicted > 0 {
					j.logger.Debug("evicted stale profiles", zap.Int("count", evicted))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
