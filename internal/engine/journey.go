package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/session"
	"github.com/marcoskids/marcos/internal/store"
)

// StartResult is the outcome of StartOrResume.
type StartResult struct {
	Session session.Session
	// Resumed is true when an existing open session was returned.
	Resumed bool
}

// StartOrResume returns the child's open (active or paused) session
// unchanged, or creates a new one over the question set for the child's
// current age. Calling it repeatedly never creates a second session.
//
// When no content exists for the child's age it returns an error
// wrapping content.ErrContentUnavailable and creates nothing.
func (e *Engine) StartOrResume(ctx context.Context, userID, childID string) (StartResult, error) {
	unlock := e.locks.Lock(childID)
	defer unlock()

	var res StartResult
	err := e.inTx(ctx, func(r store.Repos) error {
		open, err := r.Sessions.OpenForChild(ctx, childID)
		switch {
		case err == nil:
			res = StartResult{Session: open, Resumed: true}
			return nil
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		child, err := r.Children.Get(ctx, childID)
		if err != nil {
			return err
		}
		resolved, err := e.Resolve(child)
		if err != nil {
			return fmt.Errorf("resolve content for child %s: %w", childID, err)
		}
		if userID == "" {
			userID = child.UserID
		}

		s := session.New(e.newID(), userID, childID, resolved, e.cat.Version(), e.now())
		if err := r.Sessions.Create(ctx, s); err != nil {
			return err
		}
		res = StartResult{Session: s}
		return nil
	})
	if errors.Is(err, store.ErrConflict) {
		// Another process opened a session for the child first.
		open, oerr := e.store.Repos().Sessions.OpenForChild(ctx, childID)
		if oerr != nil {
			return StartResult{}, errors.Join(err, oerr)
		}
		res, err = StartResult{Session: open, Resumed: true}, nil
	}
	if err != nil {
		return StartResult{}, err
	}

	if res.Resumed {
		e.log.Debug("session resumed", "child_id", childID, "session_id", res.Session.ID, "status", res.Session.Status)
	} else {
		e.log.Info("session started", "child_id", childID, "session_id", res.Session.ID,
			"band", res.Session.BandID, "total", res.Session.TotalQuestions)
	}
	return res, nil
}

// AnswerResult is everything an answer changed.
type AnswerResult struct {
	Response  answers.Response
	Session   session.Session
	Progress  progress.Aggregate
	NewBadges []badges.UnlockedBadge
	Events    []notify.Event
}

// RecordAnswer stores an answer, advances the session and refreshes
// progress, badges and notifications in one transaction.
//
// Validation errors (see answers.IsValidation) leave all state untouched
// and are never retried. Re-answering a question replaces the earlier
// response without moving the answered counter.
func (e *Engine) RecordAnswer(ctx context.Context, sessionID, questionID string, v answers.Value) (AnswerResult, error) {
	if !v.Valid() {
		return AnswerResult{}, fmt.Errorf("%w: %d", answers.ErrInvalidAnswerValue, int(v))
	}

	owner, err := e.Session(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	unlock := e.locks.Lock(owner.ChildID)
	defer unlock()

	// Re-read under the lock: the session may have moved since.
	s, err := e.Session(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	q, ok := e.cat.Question(questionID)
	if !ok || !s.Contains(questionID) {
		return AnswerResult{}, fmt.Errorf("%w: %s", answers.ErrQuestionNotInSession, questionID)
	}
	if s.Status == session.StatusCompleted {
		return e.redelivered(ctx, s, questionID, v)
	}
	now := e.now()
	resp, err := answers.Record(s, q, v, e.newID(), now)
	if err != nil {
		return AnswerResult{}, err
	}

	var out AnswerResult
	err = e.inTx(ctx, func(r store.Repos) error {
		stored, err := r.Responses.Upsert(ctx, resp)
		if err != nil {
			return err
		}
		// Feedback is computed for this answer even if the row kept an older ID.
		stored.Feedback = resp.Feedback

		next := session.Advance(s, questionID, now)
		if err := r.Sessions.Update(ctx, next); err != nil {
			return err
		}

		ev, err := e.evaluate(ctx, r, s.ChildID, s.ID, now)
		if err != nil {
			return err
		}
		// Completion is the last event of the answer that closes a session.
		events := ev.events
		if next.Status == session.StatusCompleted && s.Status != session.StatusCompleted {
			events = append(events, notify.SessionCompleted(s.ChildID, s.ID, now))
		}

		persisted, err := appendEvents(ctx, r, events)
		if err != nil {
			return err
		}

		out = AnswerResult{
			Response:  stored,
			Session:   next,
			Progress:  ev.progress,
			NewBadges: ev.newBadges,
			Events:    persisted,
		}
		return nil
	})
	if err != nil {
		return AnswerResult{}, err
	}

	e.publish(out.Events)
	e.log.Info("answer recorded",
		"child_id", s.ChildID,
		"session_id", s.ID,
		"question_id", questionID,
		"answer", v.String(),
		"answered", out.Session.AnsweredCount,
		"total", out.Session.TotalQuestions,
		"status", out.Session.Status,
		"new_badges", len(out.NewBadges),
	)
	return out, nil
}

// redelivered resolves an answer sent to a completed session. Repeating
// the stored answer is a no-op that returns the stored response and the
// unchanged session; any other answer fails with ErrSessionCompleted.
func (e *Engine) redelivered(ctx context.Context, s session.Session, questionID string, v answers.Value) (AnswerResult, error) {
	r := e.store.Repos()
	stored, err := r.Responses.Get(ctx, s.ID, questionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return AnswerResult{}, fmt.Errorf("%w: %s", answers.ErrSessionCompleted, s.ID)
	case err != nil:
		return AnswerResult{}, err
	case stored.Answer != v:
		return AnswerResult{}, fmt.Errorf("%w: %s", answers.ErrSessionCompleted, s.ID)
	}

	agg, err := e.Progress(ctx, s.ChildID)
	if err != nil {
		return AnswerResult{}, err
	}
	e.log.Debug("redelivered answer ignored", "session_id", s.ID, "question_id", questionID)
	return AnswerResult{Response: stored, Session: s, Progress: agg}, nil
}

// Pause moves an active session to paused.
func (e *Engine) Pause(ctx context.Context, sessionID string) (session.Session, error) {
	return e.transition(ctx, sessionID, session.Pause)
}

// Resume moves a paused session back to active.
func (e *Engine) Resume(ctx context.Context, sessionID string) (session.Session, error) {
	return e.transition(ctx, sessionID, session.Resume)
}

func (e *Engine) transition(ctx context.Context, sessionID string, step func(session.Session, time.Time) session.Session) (session.Session, error) {
	owner, err := e.Session(ctx, sessionID)
	if err != nil {
		return session.Session{}, err
	}
	unlock := e.locks.Lock(owner.ChildID)
	defer unlock()

	var out session.Session
	err = e.inTx(ctx, func(r store.Repos) error {
		s, err := r.Sessions.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		next := step(s, e.now())
		if next.Status != s.Status {
			if err := r.Sessions.Update(ctx, next); err != nil {
				return err
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return session.Session{}, err
	}
	e.log.Debug("session transition", "session_id", sessionID, "status", out.Status)
	return out, nil
}

func appendEvents(ctx context.Context, r store.Repos, events []notify.Event) ([]notify.Event, error) {
	out := make([]notify.Event, 0, len(events))
	for _, ev := range events {
		stored, err := r.Notifications.Append(ctx, ev)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

// IsContentGap reports whether err means no content exists for the age.
func IsContentGap(err error) bool {
	return errors.Is(err, content.ErrContentUnavailable)
}
