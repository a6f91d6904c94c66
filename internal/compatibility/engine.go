package compatibility

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sub-score weights. The overall score is always
// round(personality*0.4 + demographics*0.25 + preferences*0.35).
const (
	weightPersonality  = 0.40
	weightDemographics = 0.25
	weightPreferences  = 0.35
)

// confidenceCeiling encodes that this is an approximation method: it never
// claims full confidence no matter how complete the data is.
const confidenceCeiling = 0.8

const (
	defaultChunkSize  = 20
	defaultChunkPause = 50 * time.Millisecond
)

// Engine is the compatibility orchestrator. Its methods never return errors:
// every failure mode degrades to a usable low-confidence result, and callers
// that care must inspect IsFallback and Confidence.
type Engine struct {
	loader     *ProfileLoader
	metrics    *Recorder
	logger     *zap.Logger
	chunkSize  int
	chunkPause time.Duration
}

func NewEngine(loader *ProfileLoader, metrics *Recorder, logger *zap.Logger, chunkSize int, chunkPause time.Duration) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkPause <= 0 {
		chunkPause = defaultChunkPause
	}
	return &Engine{
		loader:     loader,
		metrics:    metrics,
		logger:     logger,
		chunkSize:  chunkSize,
		chunkPause: chunkPause,
	}
}

// Approximate scores one user pair. opts may be nil.
func (e *Engine) Approximate(ctx context.Context, user1ID, user2ID string, opts *Options) *CompatibilityResult {
	start := time.Now()
	result := e.approximatePair(ctx, user1ID, user2ID, opts)
	elapsed := time.Since(start)

	e.metrics.RecordApproximation(elapsed)
	outcome := "ok"
	if result.IsFallback {
		outcome = "fallback"
	}
	recordApproximation(outcome, result.OverallScore, elapsed)

	return result
}

func (e *Engine) approximatePair(ctx context.Context, user1ID, user2ID string, opts *Options) (result *CompatibilityResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("compatibility approximation recovered",
				zap.String("user1_id", user1ID),
				zap.String("user2_id", user2ID),
				zap.Any("panic", r))
			result = e.fallbackResult(user1ID, user2ID, opts, fmt.Sprintf("%v", r))
		}
	}()

	var profile1, profile2 *LightweightProfile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile1 = e.loader.Load(gctx, user1ID)
		return nil
	})
	g.Go(func() error {
		profile2 = e.loader.Load(gctx, user2ID)
		return nil
	})
	g.Wait()

	// The loader guarantees a profile; nil here means something went badly
	// wrong upstream and the pair gets the neutral fallback.
	if profile1 == nil || profile2 == nil {
		return e.fallbackResult(user1ID, user2ID, opts, "")
	}

	contextTag := ""
	groupID := ""
	if opts != nil {
		contextTag = opts.ContextTag
		groupID = opts.GroupID
	}

	personality := personalitySubScore(profile1, profile2, contextTag)
	demographics := demographicsSubScore(profile1, profile2)
	preferences := preferencesSubScore(profile1, profile2)

	overall := clampInt(int(math.Round(
		float64(personality)*weightPersonality+
			float64(demographics)*weightDemographics+
			float64(preferences)*weightPreferences)), 0, 100)

	return &CompatibilityResult{
		User1ID:      user1ID,
		User2ID:      user2ID,
		GroupID:      groupID,
		OverallScore: overall,
		Confidence:   confidenceScore(profile1, profile2),
		Breakdown: ScoreBreakdown{
			Personality:  personality,
			Demographics: demographics,
			Preferences:  preferences,
		},
		CalculatedAt:    time.Now().UTC(),
		IsApproximation: true,
		Algorithm:       AlgorithmVersion,
	}
}

func (e *Engine) fallbackResult(user1ID, user2ID string, opts *Options, errText string) *CompatibilityResult {
	groupID := ""
	if opts != nil {
		groupID = opts.GroupID
	}
	return &CompatibilityResult{
		User1ID:         user1ID,
		User2ID:         user2ID,
		GroupID:         groupID,
		OverallScore:    50,
		Confidence:      0.3,
		Breakdown:       ScoreBreakdown{Personality: 50, Demographics: 50, Preferences: 50},
		CalculatedAt:    time.Now().UTC(),
		IsApproximation: true,
		IsFallback:      true,
		Algorithm:       AlgorithmVersion,
		Error:           errText,
	}
}

// Metrics returns the current counters snapshot together with the live cache
// size.
func (e *Engine) Metrics(ctx context.Context) Snapshot {
	return e.metrics.Snapshot(e.loader.CacheSize(ctx))
}

// Reset clears the snapshot counters. Prometheus series keep accumulating.
func (e *Engine) Reset() {
	e.metrics.Reset()
}

// personalitySubScore averages the trait matrix over the core dimensions
// present in both personalities; 50 if none are comparable.
func personalitySubScore(p1, p2 *LightweightProfile, contextTag string) int {
	total := 0.0
	count := 0
	for _, dim := range CoreDimensions {
		v1, ok1 := p1.Personality[dim]
		v2, ok2 := p2.Personality[dim]
		if !ok1 || !ok2 {
			continue
		}
		total += TraitScore(dim, v1, v2, contextTag)
		count++
	}
	if count == 0 {
		return 50
	}
	return clampInt(int(math.Round(total/float64(count))), 0, 100)
}

// demographicsSubScore averages an age-gap band with a location match; a lone
// available signal stands alone and no signal at all defaults to 70.
func demographicsSubScore(p1, p2 *LightweightProfile) int {
	ageKnown := p1.Demographics.Age > 0 && p2.Demographics.Age > 0
	locKnown := locationKnown(p1.Demographics.Location) && locationKnown(p2.Demographics.Location)

	ageScore := 0
	if ageKnown {
		gap := p1.Demographics.Age - p2.Demographics.Age
		if gap < 0 {
			gap = -gap
		}
		switch {
		case gap <= 5:
			ageScore = 90
		case gap <= 10:
			ageScore = 75
		case gap <= 15:
			ageScore = 60
		case gap <= 20:
			ageScore = 45
		default:
			ageScore = 30
		}
	}

	locScore := 0
	if locKnown {
		if strings.EqualFold(p1.Demographics.Location, p2.Demographics.Location) {
			locScore = 80
		} else {
			locScore = 65
		}
	}

	switch {
	case ageKnown && locKnown:
		return int(math.Round(float64(ageScore+locScore) / 2))
	case ageKnown:
		return ageScore
	case locKnown:
		return locScore
	default:
		return 70
	}
}

func locationKnown(location string) bool {
	return location != "" && !strings.EqualFold(location, "unknown")
}

// preferencesSubScore averages the categorical match checks that are
// comparable on both sides; 60 when none are.
func preferencesSubScore(p1, p2 *LightweightProfile) int {
	type check struct {
		a, b            string
		match, mismatch int
	}
	checks := []check{
		{p1.Preferences.BudgetPreference, p2.Preferences.BudgetPreference, 85, 60},
		{p1.Preferences.GroupSizePreference, p2.Preferences.GroupSizePreference, 75, 55},
		{p1.Preferences.ActivityLevel, p2.Preferences.ActivityLevel, 80, 65},
	}

	total := 0
	count := 0
	for _, c := range checks {
		if c.a == "" || c.b == "" {
			continue
		}
		if strings.EqualFold(c.a, c.b) {
			total += c.match
		} else {
			total += c.mismatch
		}
		count++
	}
	if count == 0 {
		return 60
	}
	return int(math.Round(float64(total) / float64(count)))
}

// confidenceScore awards factor points for the data that actually backed the
// score: 2 for personality on both sides, 1 each for shared age, full
// preference sets, a non-balanced archetype, and two real assessments. The
// 0.8 ceiling keeps approximations honest.
func confidenceScore(p1, p2 *LightweightProfile) float64 {
	points := 0
	if len(p1.Personality) > 0 && len(p2.Personality) > 0 {
		points += 2
	}
	if p1.Demographics.Age > 0 && p2.Demographics.Age > 0 {
		points++
	}
	if fullPreferences(p1.Preferences) && fullPreferences(p2.Preferences) {
		points++
	}
	if distinctArchetype(p1.Archetype) || distinctArchetype(p2.Archetype) {
		points++
	}
	if !p1.IsSynthetic && !p2.IsSynthetic {
		points++
	}

	confidence := float64(points) / 6 * confidenceCeiling
	return math.Round(confidence*100) / 100
}

func fullPreferences(p Preferences) bool {
	return p.BudgetPreference != "" && p.GroupSizePreference != "" && p.ActivityLevel != ""
}

func distinctArchetype(archetype string) bool {
	return archetype != "" && archetype != ArchetypeBalanced
}
