package badges

import (
	"fmt"

	"github.com/marcoskids/marcos/internal/content"
)

// Badge IDs.
const (
	FirstResponse  = "primeira_resposta"
	FirstJourney   = "primeira_jornada"
	BandComplete   = "faixa_completa"
	Halfway        = "meio_caminho"
	FullExplorer   = "explorador_total"
	Consistency    = "constancia"
	HundredAnswers = "cem_respostas"
)

// DimensionBadgeID returns the ID of the badge for completing a dimension.
func DimensionBadgeID(d content.Dimension) string {
	return "dimensao_" + string(d)
}

var catalogue = buildCatalogue()

func buildCatalogue() []Badge {
	list := []Badge{
		{
			ID:          FirstResponse,
			Name:        "Primeiro Passo",
			Description: "Registrou a primeira resposta da jornada.",
			Kind:        KindMilestone,
			Predicate:   func(f Facts) bool { return f.ResponseCount >= 1 },
		},
		{
			ID:          FirstJourney,
			Name:        "Jornada Concluída",
			Description: "Concluiu a primeira sessão de acompanhamento.",
			Kind:        KindMilestone,
			Predicate:   func(f Facts) bool { return f.SessionCount >= 1 },
		},
		{
			ID:          BandComplete,
			Name:        "Faixa Completa",
			Description: "Respondeu todas as perguntas de uma faixa etária.",
			Kind:        KindMilestone,
			Predicate:   func(f Facts) bool { return len(f.Progress.CompletedBands) >= 1 },
		},
		{
			ID:          Halfway,
			Name:        "Meio Caminho",
			Description: "Alcançou 50% do progresso geral.",
			Kind:        KindProgress,
			Predicate:   func(f Facts) bool { return f.Progress.Overall >= 50 },
		},
		{
			ID:          FullExplorer,
			Name:        "Explorador Total",
			Description: "Completou todas as dimensões alcançadas.",
			Kind:        KindProgress,
			Predicate: func(f Facts) bool {
				return f.Progress.ReachedDimensions() > 0 && f.Progress.Overall >= 100
			},
		},
		{
			ID:          Consistency,
			Name:        "Constância",
			Description: "Concluiu três sessões de acompanhamento.",
			Kind:        KindHabit,
			Predicate:   func(f Facts) bool { return f.SessionCount >= 3 },
		},
		{
			ID:          HundredAnswers,
			Name:        "Cem Respostas",
			Description: "Registrou cem respostas.",
			Kind:        KindHabit,
			Predicate:   func(f Facts) bool { return f.ResponseCount >= 100 },
		},
	}

	for _, d := range content.AllDimensions() {
		list = append(list, Badge{
			ID:          DimensionBadgeID(d),
			Name:        "Mestre em " + d.DisplayName(),
			Description: fmt.Sprintf("Respondeu todas as perguntas de %s alcançadas.", d.DisplayName()),
			Kind:        KindDimension,
			Predicate: func(f Facts) bool {
				dp := f.Progress.PerDimension[d]
				return dp.Reached() && dp.Answered == dp.Total
			},
		})
	}
	return list
}

// All returns every badge in display order.
func All() []Badge {
	out := make([]Badge, len(catalogue))
	copy(out, catalogue)
	return out
}

// Get returns the badge with the given ID.
func Get(id string) (Badge, bool) {
	for _, b := range catalogue {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
