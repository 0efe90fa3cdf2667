package content

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrContentUnavailable means no curated band covers the requested age.
// It is an expected condition: callers degrade to "no session available".
var ErrContentUnavailable = errors.New("content unavailable for age")

// ErrInvalidAge is returned for negative ages.
var ErrInvalidAge = errors.New("invalid age")

// Catalogue is a versioned, read-only snapshot of banded question content.
// It is safe for concurrent use once built.
type Catalogue struct {
	version   string
	bands     []AgeBand
	questions []Question

	bandByID map[string]AgeBand
	byID     map[string]Question
	byBand   map[string][]Question
}

// Resolution is the outcome of resolving an age against the catalogue.
type Resolution struct {
	Band      AgeBand
	Questions []Question
}

// QuestionIDs returns the question IDs in resolution order.
func (r Resolution) QuestionIDs() []string {
	ids := make([]string, len(r.Questions))
	for i, q := range r.Questions {
		ids[i] = q.ID
	}
	return ids
}

// NewCatalogue validates and indexes the given content.
func NewCatalogue(version string, bands []AgeBand, questions []Question) (*Catalogue, error) {
	if err := validateCatalogue(version, bands, questions); err != nil {
		return nil, err
	}

	c := &Catalogue{
		version:   version,
		bands:     slices.Clone(bands),
		questions: slices.Clone(questions),
		bandByID:  make(map[string]AgeBand, len(bands)),
		byID:      make(map[string]Question, len(questions)),
		byBand:    make(map[string][]Question, len(bands)),
	}

	for _, b := range c.bands {
		c.bandByID[b.ID] = b
	}
	for _, q := range c.questions {
		c.byID[q.ID] = q
		c.byBand[q.BandID] = append(c.byBand[q.BandID], q)
	}
	for id, qs := range c.byBand {
		sortQuestions(qs)
		c.byBand[id] = qs
	}

	// Weeks bands first, then months, each by lower bound.
	sort.SliceStable(c.bands, func(i, j int) bool {
		if c.bands[i].Kind != c.bands[j].Kind {
			return c.bands[i].Kind == BandWeeks
		}
		return c.bands[i].Min < c.bands[j].Min
	})

	return c, nil
}

// sortQuestions orders questions deterministically: order_index, then
// canonical dimension order, then ID.
func sortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].OrderIndex != qs[j].OrderIndex {
			return qs[i].OrderIndex < qs[j].OrderIndex
		}
		if ri, rj := qs[i].Dimension.Rank(), qs[j].Dimension.Rank(); ri != rj {
			return ri < rj
		}
		return qs[i].ID < qs[j].ID
	})
}

// Version returns the catalogue's semantic version.
func (c *Catalogue) Version() string {
	return c.version
}

// Bands returns all bands, weeks bands first, each kind ordered by lower bound.
func (c *Catalogue) Bands() []AgeBand {
	return slices.Clone(c.bands)
}

// Band returns the band with the given ID.
func (c *Catalogue) Band(id string) (AgeBand, bool) {
	b, ok := c.bandByID[id]
	return b, ok
}

// Question returns the question with the given ID.
func (c *Catalogue) Question(id string) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// BandQuestions returns the band's questions in resolution order.
func (c *Catalogue) BandQuestions(bandID string) []Question {
	return slices.Clone(c.byBand[bandID])
}

// Len returns the number of questions in the catalogue.
func (c *Catalogue) Len() int {
	return len(c.questions)
}

// Resolve selects the age-appropriate band and its ordered question set.
//
// Rule order: while Months < 6 a weeks band containing the child's weeks
// wins; otherwise the months band containing Months; otherwise
// ErrContentUnavailable. Bands with no questions count as unavailable.
func (c *Catalogue) Resolve(age Age) (Resolution, error) {
	if age.Months < 0 {
		return Resolution{}, fmt.Errorf("%w: %d months", ErrInvalidAge, age.Months)
	}

	if age.Months < weeksPrecedenceMonths && age.HasWeeks() {
		if b, ok := c.findBand(BandWeeks, age); ok {
			return c.resolution(b)
		}
	}
	if b, ok := c.findBand(BandMonths, age); ok {
		return c.resolution(b)
	}
	return Resolution{}, fmt.Errorf("%w: %d months", ErrContentUnavailable, age.Months)
}

// ResolveQuestionSet resolves by month count only.
func (c *Catalogue) ResolveQuestionSet(ageInMonths int) ([]Question, error) {
	res, err := c.Resolve(MonthsOnly(ageInMonths))
	if err != nil {
		return nil, err
	}
	return res.Questions, nil
}

func (c *Catalogue) findBand(kind BandKind, age Age) (AgeBand, bool) {
	for _, b := range c.bands {
		if b.Kind == kind && b.Contains(age) {
			return b, true
		}
	}
	return AgeBand{}, false
}

func (c *Catalogue) resolution(b AgeBand) (Resolution, error) {
	qs := c.BandQuestions(b.ID)
	if len(qs) == 0 {
		return Resolution{}, fmt.Errorf("%w: band %s has no questions", ErrContentUnavailable, b.ID)
	}
	return Resolution{Band: b, Questions: qs}, nil
}

// ReachedBands returns the bands the child has already aged into.
func (c *Catalogue) ReachedBands(age Age) []AgeBand {
	var out []AgeBand
	for _, b := range c.bands {
		if b.Reached(age) {
			out = append(out, b)
		}
	}
	return out
}

// ReachedQuestions returns every question in a reached band.
func (c *Catalogue) ReachedQuestions(age Age) []Question {
	var out []Question
	for _, b := range c.ReachedBands(age) {
		out = append(out, c.byBand[b.ID]...)
	}
	return out
}
