package content

// Dimension is a developmental category used to bucket questions and progress.
type Dimension string

const (
	DimGrossMotor Dimension = "motor_grosso"
	DimFineMotor  Dimension = "motor_fino"
	DimLanguage   Dimension = "linguagem"
	DimCognitive  Dimension = "cognitivo"
	DimSocial     Dimension = "social_emocional"
	DimSelfCare   Dimension = "autocuidado"
)

// AllDimensions returns all dimensions in their canonical order. The order is
// part of question resolution (tie-break after order_index) and must not change.
func AllDimensions() []Dimension {
	return []Dimension{
		DimGrossMotor,
		DimFineMotor,
		DimLanguage,
		DimCognitive,
		DimSocial,
		DimSelfCare,
	}
}

// dimensionRank maps a dimension to its canonical position.
var dimensionRank = func() map[Dimension]int {
	m := make(map[Dimension]int)
	for i, d := range AllDimensions() {
		m[d] = i
	}
	return m
}()

// Valid reports whether d is one of the known dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionRank[d]
	return ok
}

// Rank returns the canonical position of d, or len(AllDimensions()) if unknown.
func (d Dimension) Rank() int {
	if r, ok := dimensionRank[d]; ok {
		return r
	}
	return len(dimensionRank)
}

// DisplayName returns a human-readable label for the dimension.
func (d Dimension) DisplayName() string {
	switch d {
	case DimGrossMotor:
		return "Motor Grosso"
	case DimFineMotor:
		return "Motor Fino"
	case DimLanguage:
		return "Linguagem"
	case DimCognitive:
		return "Cognitivo"
	case DimSocial:
		return "Social e Emocional"
	case DimSelfCare:
		return "Autocuidado"
	default:
		return string(d)
	}
}
