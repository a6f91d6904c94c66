package compatibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestJanitor_SweepsStaleEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := NewMemoryCache(10 * time.Millisecond)
	cache.Put(ctx, "user-1", testProfile("user-1"))
	cache.Put(ctx, "user-2", testProfile("user-2"))

	NewJanitor(cache, 20*time.Millisecond, zap.NewNop()).Start(ctx)

	assert.Eventually(t, func() bool {
		return cache.Len(ctx) == 0
	}, time.Second, 10*time.Millisecond)
}
