package compatibility

import "time"

// Trait dimension names used across profiles, prototypes and scoring.
const (
	DimEnergyLevel        = "energy_level"
	DimSocialPreference   = "social_preference"
	DimAdventureStyle     = "adventure_style"
	DimRiskTolerance      = "risk_tolerance"
	DimPlanningStyle      = "planning_style"
	DimCommunicationStyle = "communication_style"
)

// CoreDimensions are the five dimensions that participate in archetype
// classification and the personality sub-score. communication_style is
// carried on profiles but stays out of the pairwise score.
var CoreDimensions = []string{
	DimEnergyLevel,
	DimSocialPreference,
	DimAdventureStyle,
	DimRiskTolerance,
	DimPlanningStyle,
}

// AlgorithmVersion tags every result produced by this engine.
const AlgorithmVersion = "fast-approximation-v1"

type Demographics struct {
	Age      int    `json:"age" db:"age"`
	Location string `json:"location" db:"location"`
}

type Preferences struct {
	BudgetPreference    string `json:"budget_preference" db:"budget_preference"`
	GroupSizePreference string `json:"group_size_preference" db:"group_size_preference"`
	ActivityLevel       string `json:"activity_level" db:"activity_level"`
}

// LightweightProfile is the read-only snapshot the engine scores against.
// Personality holds only the dimensions that were actually assessed (or
// synthesized); absent dimensions are simply not comparable.
type LightweightProfile struct {
	UserID       string         `json:"user_id"`
	Personality  map[string]int `json:"personality"`
	Demographics Demographics   `json:"demographics"`
	Preferences  Preferences    `json:"preferences"`
	Archetype    string         `json:"archetype"`
	IsSynthetic  bool           `json:"is_synthetic"`
	AssessedAt   *time.Time     `json:"assessed_at,omitempty"`
}

// ScoreBreakdown carries the three sub-scores behind an overall score.
type ScoreBreakdown struct {
	Personality  int `json:"personality"`
	Demographics int `json:"demographics"`
	Preferences  int `json:"preferences"`
}

// CompatibilityResult is immutable once returned. OverallScore always equals
// round(personality*0.4 + demographics*0.25 + preferences*0.35), clamped to
// [0,100].
type CompatibilityResult struct {
	User1ID         string         `json:"user1_id"`
	User2ID         string         `json:"user2_id"`
	GroupID         string         `json:"group_id,omitempty"`
	OverallScore    int            `json:"overall_score"`
	Confidence      float64        `json:"confidence"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	CalculatedAt    time.Time      `json:"calculated_at"`
	IsApproximation bool           `json:"is_approximation"`
	IsFallback      bool           `json:"is_fallback"`
	Algorithm       string         `json:"algorithm"`
	Error           string         `json:"error,omitempty"`
}

// Options is an opaque passthrough for the caller's own bookkeeping plus the
// activity context that may reweight risk scoring.
type Options struct {
	GroupID    string
	ContextTag string
}

// Pair identifies one user pair inside a batch request.
type Pair struct {
	User1ID string `json:"user1_id" validate:"required"`
	User2ID string `json:"user2_id" validate:"required"`
}

// BatchResult aggregates a full batch evaluation. Results is keyed by
// "{user1}_{user2}".
type BatchResult struct {
	BatchID      string                          `json:"batch_id"`
	Results      map[string]*CompatibilityResult `json:"results"`
	TotalPairs   int                             `json:"total_pairs"`
	AverageScore float64                         `json:"average_score"`
}
