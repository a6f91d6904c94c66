package compatibility

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApproximateBatch evaluates many pairs under bounded concurrency: pairs
// within a chunk run concurrently, chunks run sequentially with a short pause
// between them to throttle the backing store. A failed pair yields that
// pair's fallback result; it never aborts its siblings.
func (e *Engine) ApproximateBatch(ctx context.Context, pairs []Pair, opts *Options) *BatchResult {
	batchID := uuid.NewString()
	start := time.Now()

	results := make(map[string]*CompatibilityResult, len(pairs))
	var mu sync.Mutex

	for chunkStart := 0; chunkStart < len(pairs); chunkStart += e.chunkSize {
		chunkEnd := chunkStart + e.chunkSize
		if chunkEnd > len(pairs) {
			chunkEnd = len(pairs)
		}

		var wg sync.WaitGroup
		for _, pair := range pairs[chunkStart:chunkEnd] {
			wg.Add(1)
			go func(pair Pair) {
				defer wg.Done()
				result := e.Approximate(ctx, pair.User1ID, pair.User2ID, opts)
				mu.Lock()
				results[PairKey(pair.User1ID, pair.User2ID)] = result
				mu.Unlock()
			}(pair)
		}
		wg.Wait()

		if chunkEnd < len(pairs) {
			select {
			case <-time.After(e.chunkPause):
			case <-ctx.Done():
			}
		}
	}

	total := 0
	for _, result := range results {
		total += result.OverallScore
	}
	average := 0.0
	if len(results) > 0 {
		average = float64(total) / float64(len(results))
	}

	e.logger.Info("batch approximation complete",
		zap.String("batch_id", batchID),
		zap.Int("pairs", len(pairs)),
		zap.Float64("average_score", average),
		zap.Duration("elapsed", time.Since(start)))

	return &BatchResult{
		BatchID:      batchID,
		Results:      results,
		TotalPairs:   len(pairs),
		AverageScore: average,
	}
}

// PairKey is the deterministic result-map key for a pair.
func PairKey(user1ID, user2ID string) string {
	return fmt.Sprintf("%s_%s", user1ID, user2ID)
}
