package compatibility

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(store ProfileStore, cache ProfileCache) *Engine {
	if cache == nil {
		cache = NewMemoryCache(5 * time.Minute)
	}
	recorder := NewRecorder()
	loader := NewProfileLoader(store, cache, NewSyntheticGenerator(1), recorder, zap.NewNop())
	return NewEngine(loader, recorder, zap.NewNop(), 20, time.Millisecond)
}

// panicCache poisons lookups for one user to exercise the orchestrator's
// recovery boundary.
type panicCache struct {
	inner  ProfileCache
	target string
}

func (c *panicCache) Get(ctx context.Context, userID string) (*LightweightProfile, bool) {
	if userID == c.target {
		panic("cache entry corrupted")
	}
	return c.inner.Get(ctx, userID)
}

func (c *panicCache) Put(ctx context.Context, userID string, profile *LightweightProfile) {
	c.inner.Put(ctx, userID, profile)
}

func (c *panicCache) EvictStale(ctx context.Context) int { return c.inner.EvictStale(ctx) }
func (c *panicCache) Len(ctx context.Context) int        { return c.inner.Len(ctx) }

func TestApproximate_CompleteProfiles(t *testing.T) {
	store := newFakeStore()
	store.profiles["user-1"] = assessedProfile("user-1")
	store.profiles["user-2"] = assessedProfile("user-2")
	engine := newTestEngine(store, nil)

	result := engine.Approximate(context.Background(), "user-1", "user-2", nil)

	require.NotNil(t, result)
	assert.Equal(t, "user-1", result.User1ID)
	assert.Equal(t, "user-2", result.User2ID)
	assert.True(t, result.IsApproximation)
	assert.False(t, result.IsFallback)
	assert.Equal(t, AlgorithmVersion, result.Algorithm)
	assert.False(t, result.CalculatedAt.IsZero())

	// Identical complete profiles: every factor point is awarded.
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestApproximate_WeightedFormulaInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	store := newFakeStore()
	engine := newTestEngine(store, nil)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		u1 := fmt.Sprintf("rand-%d-a", i)
		u2 := fmt.Sprintf("rand-%d-b", i)
		store.profiles[u1] = randomProfile(rng, u1)
		store.profiles[u2] = randomProfile(rng, u2)

		result := engine.Approximate(ctx, u1, u2, nil)

		expected := clampInt(int(math.Round(
			float64(result.Breakdown.Personality)*0.4+
				float64(result.Breakdown.Demographics)*0.25+
				float64(result.Breakdown.Preferences)*0.35)), 0, 100)

		assert.Equal(t, expected, result.OverallScore)
		assert.GreaterOrEqual(t, result.OverallScore, 0)
		assert.LessOrEqual(t, result.OverallScore, 100)
		assert.LessOrEqual(t, result.Confidence, 0.8)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
	}
}

// randomProfile produces profiles with arbitrary gaps in every field group,
// including fully-empty ones.
func randomProfile(rng *rand.Rand, userID string) *LightweightProfile {
	profile := &LightweightProfile{
		UserID:      userID,
		Personality: make(map[string]int),
	}
	for _, dim := range CoreDimensions {
		if rng.Float64() < 0.7 {
			profile.Personality[dim] = rng.Intn(101)
		}
	}
	if rng.Float64() < 0.8 {
		profile.Demographics.Age = 18 + rng.Intn(50)
	}
	if rng.Float64() < 0.8 {
		profile.Demographics.Location = []string{"lisbon", "porto", "berlin"}[rng.Intn(3)]
	}
	if rng.Float64() < 0.7 {
		profile.Preferences.BudgetPreference = []string{"budget", "moderate", "luxury"}[rng.Intn(3)]
	}
	if rng.Float64() < 0.7 {
		profile.Preferences.GroupSizePreference = []string{"small-group", "large-group"}[rng.Intn(2)]
	}
	if rng.Float64() < 0.7 {
		profile.Preferences.ActivityLevel = []string{"low", "moderate", "high"}[rng.Intn(3)]
	}
	if rng.Float64() < 0.5 {
		assessedAt := time.Now().Add(-time.Duration(rng.Intn(1000)) * time.Hour)
		profile.AssessedAt = &assessedAt
	} else {
		profile.IsSynthetic = true
	}
	return profile
}

func TestApproximate_NeutralDefaultsForEmptyProfiles(t *testing.T) {
	empty1 := &LightweightProfile{UserID: "a", IsSynthetic: true}
	empty2 := &LightweightProfile{UserID: "b", IsSynthetic: true}

	assert.Equal(t, 50, personalitySubScore(empty1, empty2, ""))
	assert.Equal(t, 70, demographicsSubScore(empty1, empty2))
	assert.Equal(t, 60, preferencesSubScore(empty1, empty2))
	assert.Equal(t, 0.0, confidenceScore(empty1, empty2))
}

func TestDemographicsSubScore(t *testing.T) {
	withAge := func(age int, location string) *LightweightProfile {
		return &LightweightProfile{Demographics: Demographics{Age: age, Location: location}}
	}

	tests := []struct {
		name     string
		p1, p2   *LightweightProfile
		expected int
	}{
		{"close ages same city", withAge(30, "lisbon"), withAge(33, "lisbon"), 85},
		{"close ages different city", withAge(30, "lisbon"), withAge(33, "porto"), 78},
		{"wide age gap same city", withAge(25, "lisbon"), withAge(55, "lisbon"), 55},
		{"age only", withAge(30, ""), withAge(38, ""), 75},
		{"location only", withAge(0, "lisbon"), withAge(0, "lisbon"), 80},
		{"unknown location is no signal", withAge(30, "unknown"), withAge(30, "unknown"), 90},
		{"nothing known", withAge(0, ""), withAge(0, "unknown"), 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, demographicsSubScore(tt.p1, tt.p2))
		})
	}
}

func TestPreferencesSubScore(t *testing.T) {
	prefs := func(budget, group, activity string) *LightweightProfile {
		return &LightweightProfile{Preferences: Preferences{
			BudgetPreference:    budget,
			GroupSizePreference: group,
			ActivityLevel:       activity,
		}}
	}

	tests := []struct {
		name     string
		p1, p2   *LightweightProfile
		expected int
	}{
		{"all match", prefs("moderate", "small-group", "high"), prefs("moderate", "small-group", "high"), 80},
		{"all mismatch", prefs("budget", "small-group", "low"), prefs("luxury", "large-group", "high"), 60},
		{"budget only comparable and matching", prefs("moderate", "", ""), prefs("moderate", "small-group", ""), 85},
		{"nothing comparable", prefs("", "", ""), prefs("moderate", "small-group", "high"), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, preferencesSubScore(tt.p1, tt.p2))
		})
	}
}

func TestConfidenceScore_PointAwards(t *testing.T) {
	full := assessedProfile("a")
	full.Archetype = "adventurer"

	partial := &LightweightProfile{
		UserID:      "b",
		Personality: map[string]int{DimEnergyLevel: 60},
		Archetype:   ArchetypeBalanced,
		IsSynthetic: true,
	}

	// full+full: 2 (personality) + 1 (age) + 1 (prefs) + 1 (archetype) + 1
	// (assessments) = 6 -> 0.8
	assert.InDelta(t, 0.8, confidenceScore(full, full), 1e-9)

	// full+partial: 2 (personality) + 1 (archetype) = 3 -> 0.4
	assert.InDelta(t, 0.4, confidenceScore(full, partial), 1e-9)

	// Ceiling holds everywhere.
	assert.LessOrEqual(t, confidenceScore(full, full), 0.8)
}

func TestApproximate_ContextTagOrdering(t *testing.T) {
	store := newFakeStore()
	store.profiles["user-1"] = assessedProfile("user-1")
	store.profiles["user-2"] = assessedProfile("user-2")
	engine := newTestEngine(store, nil)
	ctx := context.Background()

	extreme := engine.Approximate(ctx, "user-1", "user-2", &Options{ContextTag: "extreme-sports"})
	untagged := engine.Approximate(ctx, "user-1", "user-2", nil)
	wellness := engine.Approximate(ctx, "user-1", "user-2", &Options{ContextTag: "wellness-retreat"})

	assert.Greater(t, extreme.Breakdown.Personality, untagged.Breakdown.Personality)
	assert.Greater(t, untagged.Breakdown.Personality, wellness.Breakdown.Personality)
}

func TestApproximate_GroupIDPassthrough(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store, nil)

	result := engine.Approximate(context.Background(), "a", "b", &Options{GroupID: "trip-42"})

	assert.Equal(t, "trip-42", result.GroupID)
	assert.False(t, result.IsFallback)
}

func TestApproximate_RecoversToFallback(t *testing.T) {
	store := newFakeStore()
	store.profiles["user-1"] = assessedProfile("user-1")
	cache := &panicCache{inner: NewMemoryCache(5 * time.Minute), target: "boom"}
	engine := newTestEngine(store, cache)

	result := engine.Approximate(context.Background(), "user-1", "boom", &Options{GroupID: "g"})

	require.NotNil(t, result)
	assert.True(t, result.IsFallback)
	assert.Equal(t, 50, result.OverallScore)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	assert.Equal(t, ScoreBreakdown{Personality: 50, Demographics: 50, Preferences: 50}, result.Breakdown)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, "g", result.GroupID)
}

func TestApproximate_StableWithinCacheTTL(t *testing.T) {
	store := newFakeStore()
	store.profiles["user-1"] = assessedProfile("user-1")
	store.profiles["user-2"] = assessedProfile("user-2")
	engine := newTestEngine(store, nil)
	ctx := context.Background()

	first := engine.Approximate(ctx, "user-1", "user-2", nil)
	second := engine.Approximate(ctx, "user-1", "user-2", nil)

	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.Breakdown, second.Breakdown)

	snapshot := engine.Metrics(ctx)
	assert.Equal(t, int64(2), snapshot.TotalApproximations)
	assert.GreaterOrEqual(t, snapshot.CacheHits, int64(2), "second call served both profiles from cache")
	assert.Equal(t, 2, snapshot.CacheSize)
}
