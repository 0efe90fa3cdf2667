package badges

import "time"

// Evaluate returns the badges whose predicates hold for facts and that are
// not already in unlocked. It is pure: persistence and notification are
// the caller's job. Re-evaluating against the same facts after persisting
// the result yields nothing.
func Evaluate(childID string, facts Facts, unlocked map[string]bool, now time.Time) []UnlockedBadge {
	var out []UnlockedBadge
	for _, b := range catalogue {
		if unlocked[b.ID] || !b.Predicate(facts) {
			continue
		}
		at := now
		// The first-response badge is dated by the response itself.
		if b.ID == FirstResponse && !facts.FirstResponseAt.IsZero() {
			at = facts.FirstResponseAt
		}
		out = append(out, UnlockedBadge{ChildID: childID, BadgeID: b.ID, UnlockedAt: at})
	}
	return out
}
