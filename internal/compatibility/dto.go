package compatibility

// DTOs for the HTTP surface. Scoring semantics live in the engine; these are
// transport shapes only.

type BatchRequestDTO struct {
	Pairs      []Pair `json:"pairs" validate:"required,min=1,max=500,dive"`
	GroupID    string `json:"group_id,omitempty"`
	ContextTag string `json:"context_tag,omitempty" validate:"omitempty,max=100"`
}

type BatchResponseDTO struct {
	BatchID      string                          `json:"batch_id"`
	Results      map[string]*CompatibilityResult `json:"results"`
	TotalPairs   int                             `json:"total_pairs"`
	AverageScore float64                         `json:"average_score"`
}
