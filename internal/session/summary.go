package session

import (
	"time"

	"github.com/marcoskids/marcos/internal/content"
)

// Summary holds the figures shown after (or during) a session.
type Summary struct {
	SessionID      string
	Status         Status
	Answered       int
	TotalQuestions int
	Percent        float64
	Duration       time.Duration
	ByDimension    map[content.Dimension]DimensionCount
}

// DimensionCount is the per-dimension answered/total tally of one session.
type DimensionCount struct {
	Answered int
	Total    int
}

// BuildSummary creates a Summary from the session. Duration runs until
// CompletedAt for completed sessions and until now otherwise.
func BuildSummary(s Session, now time.Time) Summary {
	byDim := make(map[content.Dimension]DimensionCount)
	for _, sl := range s.Plan {
		dc := byDim[sl.Dimension]
		dc.Total++
		if s.Answered[sl.QuestionID] {
			dc.Answered++
		}
		byDim[sl.Dimension] = dc
	}

	var pct float64
	if s.TotalQuestions > 0 {
		pct = float64(s.AnsweredCount) / float64(s.TotalQuestions) * 100
	}

	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}

	return Summary{
		SessionID:      s.ID,
		Status:         s.Status,
		Answered:       s.AnsweredCount,
		TotalQuestions: s.TotalQuestions,
		Percent:        pct,
		Duration:       end.Sub(s.StartedAt),
		ByDimension:    byDim,
	}
}
