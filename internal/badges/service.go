package badges

import (
	"context"
	"fmt"
	"time"
)

// Repo persists unlocked badges.
type Repo interface {
	// ListUnlocked returns the child's unlocked badges.
	ListUnlocked(ctx context.Context, childID string) ([]UnlockedBadge, error)

	// Unlock inserts the record unless one already exists for the
	// (child, badge) pair. Reports whether a row was inserted.
	Unlock(ctx context.Context, b UnlockedBadge) (bool, error)
}

// Service evaluates and persists badge unlocks.
type Service struct {
	repo Repo
}

// NewService creates a badge service over repo.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Unlock evaluates facts and persists every newly satisfied badge.
// Only badges actually inserted by this call are returned, so concurrent
// or repeated evaluations never report the same unlock twice.
func (s *Service) Unlock(ctx context.Context, childID string, facts Facts, now time.Time) ([]UnlockedBadge, error) {
	existing, err := s.repo.ListUnlocked(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("list unlocked badges: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, b := range existing {
		have[b.BadgeID] = true
	}

	var fresh []UnlockedBadge
	for _, b := range Evaluate(childID, facts, have, now) {
		inserted, err := s.repo.Unlock(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("unlock badge %s: %w", b.BadgeID, err)
		}
		if inserted {
			fresh = append(fresh, b)
		}
	}
	return fresh, nil
}
