package compatibility

// ArchetypeBalanced is the neutral label returned for empty personalities and
// used as a low-information signal in confidence scoring.
const ArchetypeBalanced = "balanced"

type archetypePrototype struct {
	Name   string
	Traits map[string]int
}

// Prototypes are an ordered slice so the first-declared-wins tie-break is a
// structural guarantee rather than a map-iteration accident.
var archetypePrototypes = []archetypePrototype{
	{
		Name: "adventurer",
		Traits: map[string]int{
			DimEnergyLevel:      80,
			DimSocialPreference: 60,
			DimAdventureStyle:   85,
			DimRiskTolerance:    80,
			DimPlanningStyle:    30,
		},
	},
	{
		Name: "planner",
		Traits: map[string]int{
			DimEnergyLevel:      50,
			DimSocialPreference: 50,
			DimAdventureStyle:   40,
			DimRiskTolerance:    30,
			DimPlanningStyle:    85,
		},
	},
	{
		Name: "socializer",
		Traits: map[string]int{
			DimEnergyLevel:      75,
			DimSocialPreference: 90,
			DimAdventureStyle:   60,
			DimRiskTolerance:    50,
			DimPlanningStyle:    45,
		},
	},
	{
		Name: "explorer",
		Traits: map[string]int{
			DimEnergyLevel:      65,
			DimSocialPreference: 40,
			DimAdventureStyle:   75,
			DimRiskTolerance:    65,
			DimPlanningStyle:    40,
		},
	},
	{
		Name: ArchetypeBalanced,
		Traits: map[string]int{
			DimEnergyLevel:      50,
			DimSocialPreference: 50,
			DimAdventureStyle:   50,
			DimRiskTolerance:    50,
			DimPlanningStyle:    50,
		},
	},
}

// ClassifyArchetype returns the best-fit prototype label for a personality
// vector. The match score per prototype is the mean of (100 - |value - proto|)
// over the dimensions present in the personality; ties resolve to the earlier
// prototype. The label is diagnostic metadata only and never feeds the
// overall compatibility score.
func ClassifyArchetype(personality map[string]int) string {
	if len(personality) == 0 {
		return ArchetypeBalanced
	}

	best := ArchetypeBalanced
	bestScore := -1.0

	for _, proto := range archetypePrototypes {
		total := 0.0
		count := 0
		for dim, protoValue := range proto.Traits {
			value, ok := personality[dim]
			if !ok {
				continue
			}
			diff := value - protoValue
			if diff < 0 {
				diff = -diff
			}
			total += float64(100 - diff)
			count++
		}
		if count == 0 {
			continue
		}
		score := total / float64(count)
		if score > bestScore {
			bestScore = score
			best = proto.Name
		}
	}

	return best
}
