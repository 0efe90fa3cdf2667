package content

import "fmt"

// BandKind tags the unit an AgeBand is expressed in.
type BandKind string

const (
	BandWeeks  BandKind = "weeks"
	BandMonths BandKind = "months"
)

// weeksPrecedenceMonths is the age (in months) below which weeks bands are
// consulted before months bands.
const weeksPrecedenceMonths = 6

// AgeBand is an inclusive age range, either WeeksBand{Min,Max} or
// MonthsBand{Min,Max} depending on Kind.
type AgeBand struct {
	ID    string   `json:"id"`
	Kind  BandKind `json:"kind"`
	Min   int      `json:"min"`
	Max   int      `json:"max"`
	Label string   `json:"label,omitempty"`
}

// WeeksBand builds a weeks-based band.
func WeeksBand(id string, min, max int) AgeBand {
	return AgeBand{ID: id, Kind: BandWeeks, Min: min, Max: max}
}

// MonthsBand builds a months-based band.
func MonthsBand(id string, min, max int) AgeBand {
	return AgeBand{ID: id, Kind: BandMonths, Min: min, Max: max}
}

// Contains reports whether the age falls inside the band, using the band's unit.
// A weeks band never contains an age whose weeks are unknown.
func (b AgeBand) Contains(age Age) bool {
	switch b.Kind {
	case BandWeeks:
		if !age.HasWeeks() {
			return false
		}
		return age.Weeks >= b.Min && age.Weeks <= b.Max
	case BandMonths:
		return age.Months >= b.Min && age.Months <= b.Max
	}
	return false
}

// Reached reports whether the child has aged into the band, i.e. the band's
// lower bound is at or below the child's age.
func (b AgeBand) Reached(age Age) bool {
	switch b.Kind {
	case BandWeeks:
		return age.approxWeeks() >= b.Min
	case BandMonths:
		return age.Months >= b.Min
	}
	return false
}

// String renders the band for logs and CLI output.
func (b AgeBand) String() string {
	unit := "m"
	if b.Kind == BandWeeks {
		unit = "w"
	}
	if b.Label != "" {
		return fmt.Sprintf("%s (%d-%d%s, %s)", b.ID, b.Min, b.Max, unit, b.Label)
	}
	return fmt.Sprintf("%s (%d-%d%s)", b.ID, b.Min, b.Max, unit)
}

// Feedback holds the canned feedback texts, one per answer value.
type Feedback struct {
	Yes     string `json:"yes,omitempty"`
	No      string `json:"no,omitempty"`
	Unknown string `json:"unknown,omitempty"`
}

// Slot returns the feedback for answer value v (1=yes, 2=no, 3=unknown).
// Unknown values and blank slots return "".
func (f Feedback) Slot(v int) string {
	switch v {
	case 1:
		return f.Yes
	case 2:
		return f.No
	case 3:
		return f.Unknown
	}
	return ""
}

// Question is an immutable milestone question belonging to one band and one dimension.
type Question struct {
	ID           string    `json:"id"`
	BandID       string    `json:"band"`
	Dimension    Dimension `json:"dimension"`
	OrderIndex   int       `json:"order"`
	Text         string    `json:"text"`
	Feedback     Feedback  `json:"feedback"`
	MissingAlert string    `json:"missing_alert,omitempty"`
	Activity     string    `json:"activity,omitempty"`
}
