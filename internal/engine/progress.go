package engine

import (
	"context"
	"time"

	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/store"
)

// evaluation is the derived state refreshed after every write.
type evaluation struct {
	progress  progress.Aggregate
	newBadges []badges.UnlockedBadge
	events    []notify.Event
}

// compute recomputes a child's aggregate and badge facts from the full
// response history visible through r.
func (e *Engine) compute(ctx context.Context, r store.Repos, child store.Child, now time.Time) (progress.Aggregate, badges.Facts, error) {
	answered, err := r.Responses.AnsweredQuestionIDs(ctx, child.ID)
	if err != nil {
		return progress.Aggregate{}, badges.Facts{}, err
	}
	agg := progress.Compute(e.cat, content.AgeAt(child.BirthDate, now), child.ID, answered, e.weights, now)

	facts := badges.Facts{Progress: agg}
	if facts.ResponseCount, err = r.Responses.Count(ctx, child.ID); err != nil {
		return progress.Aggregate{}, badges.Facts{}, err
	}
	if facts.SessionCount, err = r.Sessions.CountCompleted(ctx, child.ID); err != nil {
		return progress.Aggregate{}, badges.Facts{}, err
	}
	if facts.FirstResponseAt, err = r.Responses.FirstRespondedAt(ctx, child.ID); err != nil {
		return progress.Aggregate{}, badges.Facts{}, err
	}
	return agg, facts, nil
}

// evaluate refreshes the progress cache and unlocks any newly earned
// badges. sessionID tags the resulting events and may be empty.
func (e *Engine) evaluate(ctx context.Context, r store.Repos, childID, sessionID string, now time.Time) (evaluation, error) {
	child, err := r.Children.Get(ctx, childID)
	if err != nil {
		return evaluation{}, err
	}
	agg, facts, err := e.compute(ctx, r, child, now)
	if err != nil {
		return evaluation{}, err
	}
	if err := r.Progress.Replace(ctx, agg); err != nil {
		return evaluation{}, err
	}

	fresh, err := badges.NewService(r.Badges).Unlock(ctx, childID, facts, now)
	if err != nil {
		return evaluation{}, err
	}
	ev := evaluation{progress: agg, newBadges: fresh}
	for _, b := range fresh {
		ev.events = append(ev.events, notify.BadgeUnlocked(childID, sessionID, b.BadgeID, b.UnlockedAt))
	}
	return ev, nil
}

// Progress recomputes the child's progress from the response history.
// It takes no lock and writes nothing.
func (e *Engine) Progress(ctx context.Context, childID string) (progress.Aggregate, error) {
	r := e.store.Repos()
	child, err := r.Children.Get(ctx, childID)
	if err != nil {
		return progress.Aggregate{}, err
	}
	agg, _, err := e.compute(ctx, r, child, e.now())
	return agg, err
}

// CachedProgress returns the progress stored by the last write or
// recompute. It may lag behind Progress after a content change.
func (e *Engine) CachedProgress(ctx context.Context, childID string) (progress.Aggregate, error) {
	return e.store.Repos().Progress.Get(ctx, childID)
}

// Recomputed is the outcome of Recompute.
type Recomputed struct {
	Progress  progress.Aggregate
	NewBadges []badges.UnlockedBadge
}

// Recompute rebuilds the child's progress cache from scratch and unlocks
// any badges the history now satisfies. Running it twice in a row is a
// no-op the second time apart from the cache timestamp.
func (e *Engine) Recompute(ctx context.Context, childID string) (Recomputed, error) {
	unlock := e.locks.Lock(childID)
	defer unlock()

	var (
		out    Recomputed
		events []notify.Event
	)
	err := e.inTx(ctx, func(r store.Repos) error {
		ev, err := e.evaluate(ctx, r, childID, "", e.now())
		if err != nil {
			return err
		}
		if events, err = appendEvents(ctx, r, ev.events); err != nil {
			return err
		}
		out = Recomputed{Progress: ev.progress, NewBadges: ev.newBadges}
		return nil
	})
	if err != nil {
		return Recomputed{}, err
	}

	e.publish(events)
	e.log.Debug("progress recomputed", "child_id", childID, "overall", out.Progress.Overall, "new_badges", len(out.NewBadges))
	return out, nil
}
