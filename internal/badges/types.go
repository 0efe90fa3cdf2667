package badges

import (
	"time"

	"github.com/marcoskids/marcos/internal/progress"
)

// Kind groups badges for display.
type Kind string

const (
	KindMilestone Kind = "milestone"
	KindDimension Kind = "dimension"
	KindProgress  Kind = "progress"
	KindHabit     Kind = "habit"
)

// Icon returns the display icon for the badge kind.
func (k Kind) Icon() string {
	switch k {
	case KindMilestone:
		return "🌱"
	case KindDimension:
		return "💎"
	case KindProgress:
		return "🏆"
	case KindHabit:
		return "🔥"
	default:
		return "✦"
	}
}

// Facts is everything a badge predicate may look at.
type Facts struct {
	Progress progress.Aggregate

	// ResponseCount is the number of stored responses (one per session and question).
	ResponseCount int

	// SessionCount is the number of completed sessions.
	SessionCount int

	// FirstResponseAt is when the child's earliest response was recorded.
	FirstResponseAt time.Time
}

// Badge is a named achievement with an unlock predicate.
type Badge struct {
	ID          string
	Name        string
	Description string
	Kind        Kind

	// Predicate must be a pure function of Facts.
	Predicate func(Facts) bool
}

// UnlockedBadge records that a child earned a badge. At most one exists
// per (ChildID, BadgeID).
type UnlockedBadge struct {
	ChildID    string    `json:"child_id"`
	BadgeID    string    `json:"badge_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Icon returns the display icon for the badge.
func (b Badge) Icon() string {
	return b.Kind.Icon()
}
