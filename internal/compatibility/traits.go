package compatibility

import "strings"

// Curve families for pairwise trait scoring. The thresholds are empirically
// tuned constants carried over from production scoring; treat them as
// tunables, not derived truths.
//
//   - similarity: closer values score higher (social_preference, risk_tolerance)
//   - complementary: a moderate gap beats near-identical values (energy_level, adventure_style)
//   - balanced: a small-to-moderate gap is ideal (planning_style)

type curveFamily int

const (
	curveSimilarity curveFamily = iota
	curveComplementary
	curveBalanced
)

var dimensionCurves = map[string]curveFamily{
	DimSocialPreference: curveSimilarity,
	DimRiskTolerance:    curveSimilarity,
	DimEnergyLevel:      curveComplementary,
	DimAdventureStyle:   curveComplementary,
	DimPlanningStyle:    curveBalanced,
}

// Context multipliers for risk_tolerance. The maximum base score is 95, so a
// 1.05 boost stays under the 100 clamp and the extreme > untagged > wellness
// ordering holds for every input.
const (
	extremeContextBoost = 1.05
	wellnessContextDamp = 0.90
)

// TraitScore computes the 0-100 compatibility score for one dimension given
// both users' values. Inputs are clamped to [0,100] before use; unknown
// dimensions fall back to the similarity curve. contextTag may be empty.
func TraitScore(dimension string, valueA, valueB int, contextTag string) float64 {
	a := clampInt(valueA, 0, 100)
	b := clampInt(valueB, 0, 100)

	diff := a - b
	if diff < 0 {
		diff = -diff
	}

	family, ok := dimensionCurves[dimension]
	if !ok {
		family = curveSimilarity
	}

	var score float64
	switch family {
	case curveComplementary:
		score = complementaryScore(diff)
	case curveBalanced:
		score = balancedScore(diff)
	default:
		score = similarityScore(diff)
	}

	if dimension == DimRiskTolerance {
		score = adjustForContext(score, contextTag)
	}

	return clampFloat(score, 0, 100)
}

func similarityScore(diff int) float64 {
	switch {
	case diff <= 5:
		return 95
	case diff <= 15:
		return 85
	case diff <= 25:
		return 70
	case diff <= 40:
		return 55
	default:
		return 35
	}
}

func complementaryScore(diff int) float64 {
	switch {
	case diff <= 10:
		return 70
	case diff <= 25:
		return 90
	case diff <= 40:
		return 80
	case diff <= 60:
		return 60
	default:
		return 40
	}
}

func balancedScore(diff int) float64 {
	switch {
	case diff <= 5:
		return 75
	case diff <= 20:
		return 90
	case diff <= 35:
		return 80
	case diff <= 50:
		return 65
	default:
		return 45
	}
}

func adjustForContext(score float64, contextTag string) float64 {
	tag := strings.ToLower(contextTag)
	switch {
	case strings.Contains(tag, "extreme"):
		return score * extremeContextBoost
	case strings.Contains(tag, "wellness"):
		return score * wellnessContextDamp
	default:
		return score
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
