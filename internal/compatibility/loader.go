package compatibility

import (
	"context"

	"go.uber.org/zap"
)

// ProfileLoader resolves a user ID to a scorable profile. It never fails:
// store errors and missing assessments both degrade to synthetic generation.
type ProfileLoader struct {
	store     ProfileStore
	cache     ProfileCache
	generator *SyntheticGenerator
	metrics   *Recorder
	logger    *zap.Logger
}

func NewProfileLoader(store ProfileStore, cache ProfileCache, generator *SyntheticGenerator, metrics *Recorder, logger *zap.Logger) *ProfileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileLoader{
		store:     store,
		cache:     cache,
		generator: generator,
		metrics:   metrics,
		logger:    logger,
	}
}

// Load returns the profile for userID, from cache when fresh, from the store
// when an assessment exists, synthesized otherwise.
func (l *ProfileLoader) Load(ctx context.Context, userID string) *LightweightProfile {
	if profile, ok := l.cache.Get(ctx, userID); ok {
		l.metrics.RecordCacheHit()
		recordCacheHit()
		return profile
	}

	profile := l.fetchOrSynthesize(ctx, userID)
	profile.Archetype = ClassifyArchetype(profile.Personality)

	l.cache.Put(ctx, userID, profile)
	return profile
}

func (l *ProfileLoader) fetchOrSynthesize(ctx context.Context, userID string) *LightweightProfile {
	profile, err := l.store.FetchProfile(ctx, userID)
	if err == nil && profile != nil {
		return profile
	}

	if err != nil && err != ErrNoAssessment {
		l.logger.Debug("profile fetch failed, synthesizing",
			zap.String("user_id", userID), zap.Error(err))
	}
	recordSyntheticProfile()
	return l.generator.Generate(userID)
}

// CacheSize reports the current cache population for metrics snapshots.
func (l *ProfileLoader) CacheSize(ctx context.Context) int {
	return l.cache.Len(ctx)
}
