package notify

import "time"

// Kind identifies what happened.
type Kind string

const (
	KindBadgeUnlocked    Kind = "badge_unlocked"
	KindSessionCompleted Kind = "session_completed"
)

// Event is a child-facing notification. Seq is assigned by the store's
// outbox and is zero until persisted.
type Event struct {
	Seq       int64     `json:"seq"`
	Kind      Kind      `json:"kind"`
	ChildID   string    `json:"child_id"`
	SessionID string    `json:"session_id,omitempty"`
	BadgeID   string    `json:"badge_id,omitempty"`
	At        time.Time `json:"at"`
}

// BadgeUnlocked builds the event for a new badge.
func BadgeUnlocked(childID, sessionID, badgeID string, at time.Time) Event {
	return Event{Kind: KindBadgeUnlocked, ChildID: childID, SessionID: sessionID, BadgeID: badgeID, At: at}
}

// SessionCompleted builds the event for a finished session.
func SessionCompleted(childID, sessionID string, at time.Time) Event {
	return Event{Kind: KindSessionCompleted, ChildID: childID, SessionID: sessionID, At: at}
}
