// Package progress aggregates a child's response history into
// per-dimension and overall completion percentages.
//
// Aggregates are derived data: they are recomputed from the full history
// every time and never updated incrementally.
package progress

import (
	"time"

	"github.com/marcoskids/marcos/internal/content"
)

// DimensionProgress is the completion of one dimension.
type DimensionProgress struct {
	Answered int     `json:"answered"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// Reached reports whether the child has aged into any content of the dimension.
func (d DimensionProgress) Reached() bool {
	return d.Total > 0
}

// Aggregate is the recomputed progress of one child.
type Aggregate struct {
	ChildID      string                                  `json:"child_id"`
	PerDimension map[content.Dimension]DimensionProgress `json:"per_dimension"`
	Overall      float64                                 `json:"overall"`

	// CompletedBands lists reached bands whose every question has been answered.
	CompletedBands []string `json:"completed_bands,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// ReachedDimensions returns how many dimensions have a non-zero denominator.
func (a Aggregate) ReachedDimensions() int {
	n := 0
	for _, d := range a.PerDimension {
		if d.Reached() {
			n++
		}
	}
	return n
}

// Weights optionally weights dimensions in the overall mean. A nil Weights
// means an unweighted mean; dimensions missing from a non-nil Weights
// weigh 1, and a zero weight drops the dimension from the mean.
type Weights map[content.Dimension]float64

func (w Weights) of(d content.Dimension) float64 {
	if w == nil {
		return 1
	}
	if v, ok := w[d]; ok {
		return v
	}
	return 1
}

// Compute derives the aggregate for a child of the given age from the IDs of
// every question the child has answered, across all sessions. Duplicate IDs
// and IDs outside the reached content are ignored.
//
// Denominator per dimension: distinct questions of that dimension in bands
// the child has reached. Dimensions with a zero denominator report 0 and
// are excluded from Overall.
func Compute(cat *content.Catalogue, age content.Age, childID string, answered []string, weights Weights, now time.Time) Aggregate {
	done := make(map[string]bool, len(answered))
	for _, id := range answered {
		done[id] = true
	}

	per := make(map[content.Dimension]DimensionProgress, len(content.AllDimensions()))
	for _, d := range content.AllDimensions() {
		per[d] = DimensionProgress{}
	}

	var completed []string
	for _, band := range cat.ReachedBands(age) {
		qs := cat.BandQuestions(band.ID)
		bandDone := len(qs) > 0
		for _, q := range qs {
			dp := per[q.Dimension]
			dp.Total++
			if done[q.ID] {
				dp.Answered++
			} else {
				bandDone = false
			}
			per[q.Dimension] = dp
		}
		if bandDone {
			completed = append(completed, band.ID)
		}
	}

	// Canonical order keeps the floating-point sum reproducible.
	var sum, weightSum float64
	for _, d := range content.AllDimensions() {
		dp := per[d]
		if dp.Total == 0 {
			continue
		}
		dp.Percent = float64(dp.Answered) / float64(dp.Total) * 100
		per[d] = dp

		w := weights.of(d)
		if w <= 0 {
			continue
		}
		sum += w * dp.Percent
		weightSum += w
	}

	var overall float64
	if weightSum > 0 {
		overall = sum / weightSum
	}

	return Aggregate{
		ChildID:        childID,
		PerDimension:   per,
		Overall:        overall,
		CompletedBands: completed,
		ComputedAt:     now,
	}
}
