package content

import (
	"fmt"
	"strings"
)

// validateCatalogue performs all structural checks on the given content.
// Returns a combined error describing all problems found, or nil if valid.
func validateCatalogue(version string, bands []AgeBand, questions []Question) error {
	var errs []string

	if !ValidVersion(version) {
		errs = append(errs, fmt.Sprintf("version %q is not a semantic version", version))
	}

	bandIDs := make(map[string]AgeBand, len(bands))
	for _, b := range bands {
		if b.ID == "" {
			errs = append(errs, "band with empty ID")
			continue
		}
		if _, dup := bandIDs[b.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate band ID: %q", b.ID))
		}
		bandIDs[b.ID] = b
		if b.Kind != BandWeeks && b.Kind != BandMonths {
			errs = append(errs, fmt.Sprintf("band %q: unknown kind %q", b.ID, b.Kind))
		}
		if b.Min < 0 || b.Max < b.Min {
			errs = append(errs, fmt.Sprintf("band %q: invalid range [%d, %d]", b.ID, b.Min, b.Max))
		}
	}

	// Overlapping bands of the same kind would make resolution ambiguous.
	for i := range bands {
		for j := i + 1; j < len(bands); j++ {
			a, b := bands[i], bands[j]
			if a.Kind != b.Kind {
				continue
			}
			if a.Min <= b.Max && b.Min <= a.Max {
				errs = append(errs, fmt.Sprintf("bands %q and %q overlap", a.ID, b.ID))
			}
		}
	}

	qIDs := make(map[string]bool, len(questions))
	type slot struct {
		band  string
		order int
		dim   Dimension
	}
	slots := make(map[slot]string)
	for _, q := range questions {
		if q.ID == "" {
			errs = append(errs, "question with empty ID")
			continue
		}
		if qIDs[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
		}
		qIDs[q.ID] = true

		if _, ok := bandIDs[q.BandID]; !ok {
			errs = append(errs, fmt.Sprintf("question %q references unknown band %q", q.ID, q.BandID))
		}
		if !q.Dimension.Valid() {
			errs = append(errs, fmt.Sprintf("question %q has unknown dimension %q", q.ID, q.Dimension))
		}
		if strings.TrimSpace(q.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %q has empty text", q.ID))
		}
		if q.OrderIndex < 0 {
			errs = append(errs, fmt.Sprintf("question %q: order must be >= 0, got %d", q.ID, q.OrderIndex))
		}

		k := slot{q.BandID, q.OrderIndex, q.Dimension}
		if other, dup := slots[k]; dup {
			errs = append(errs, fmt.Sprintf("questions %q and %q share band %q, order %d and dimension %q",
				other, q.ID, q.BandID, q.OrderIndex, q.Dimension))
		}
		slots[k] = q.ID
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalogue validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
