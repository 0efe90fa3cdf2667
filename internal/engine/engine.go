// Package engine orchestrates the developmental journey: it resolves
// content, drives sessions, records answers and keeps progress, badges
// and notifications consistent with the response history.
//
// Every mutating operation for a child runs under that child's lock and
// inside a single store transaction. Reads are unlocked.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/logging"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/retry"
	"github.com/marcoskids/marcos/internal/session"
	"github.com/marcoskids/marcos/internal/store"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Retry   retry.Config
	Weights progress.Weights
	Bus     *notify.Bus
	Logger  *logging.Logger

	// Now is the clock; defaults to time.Now in UTC.
	Now func() time.Time
	// NewID generates record IDs; defaults to random UUIDs.
	NewID func() string
}

// Engine is safe for concurrent use.
type Engine struct {
	store   *store.Store
	cat     *content.Catalogue
	bus     *notify.Bus
	log     *logging.Logger
	retry   retry.Config
	weights progress.Weights
	now     func() time.Time
	newID   func() string

	locks keyedMutex
}

// New creates an engine over st serving content from cat.
func New(st *store.Store, cat *content.Catalogue, opts Options) *Engine {
	e := &Engine{
		store:   st,
		cat:     cat,
		bus:     opts.Bus,
		log:     opts.Logger,
		retry:   opts.Retry,
		weights: opts.Weights,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if e.log == nil {
		e.log = logging.Nop()
	}
	if e.retry.MaxAttempts == 0 {
		e.retry = retry.DefaultConfig()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Now returns the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Catalogue returns the content the engine serves.
func (e *Engine) Catalogue() *content.Catalogue {
	return e.cat
}

// RecordContentVersion stores the catalogue version in the content log.
// It refuses a catalogue older than the newest version already recorded.
func (e *Engine) RecordContentVersion(ctx context.Context) error {
	r := e.store.Repos()
	latest, err := r.Content.LatestVersion(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return err
	case content.CompareVersion(e.cat.Version(), latest.Version) < 0:
		return fmt.Errorf("%w: catalogue %s is older than recorded %s",
			ErrContentDowngrade, e.cat.Version(), latest.Version)
	}

	v := store.ContentVersion{
		Version:   e.cat.Version(),
		Bands:     len(e.cat.Bands()),
		Questions: e.cat.Len(),
		LoadedAt:  e.now(),
	}
	return e.withRetry(ctx, func(ctx context.Context) error {
		return r.Content.RecordVersion(ctx, v)
	})
}

// withRetry retries transient store failures with backoff.
func (e *Engine) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, e.retry, store.IsTransient, op)
}

// inTx runs fn in one transaction, retrying the whole transaction on
// transient failure.
func (e *Engine) inTx(ctx context.Context, fn func(r store.Repos) error) error {
	return e.withRetry(ctx, func(ctx context.Context) error {
		return e.store.WithTx(ctx, fn)
	})
}

// publish hands committed events to in-process subscribers.
func (e *Engine) publish(events []notify.Event) {
	if e.bus != nil && len(events) > 0 {
		e.bus.Publish(events...)
	}
}

// RegisterChild stores a new child.
func (e *Engine) RegisterChild(ctx context.Context, userID, name string, birth time.Time) (store.Child, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return store.Child{}, fmt.Errorf("%w: user id is required", ErrInvalidChild)
	}
	now := e.now()
	if birth.IsZero() || birth.After(now) {
		return store.Child{}, fmt.Errorf("%w: %s", ErrInvalidBirthDate, birth.Format(time.DateOnly))
	}

	c := store.Child{
		ID:        e.newID(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		BirthDate: birth.UTC(),
		CreatedAt: now,
	}
	err := e.withRetry(ctx, func(ctx context.Context) error {
		return e.store.Repos().Children.Create(ctx, c)
	})
	if err != nil {
		return store.Child{}, err
	}
	e.log.Info("child registered", "child_id", c.ID, "user_id", userID)
	return c, nil
}

// Child returns a child by ID.
func (e *Engine) Child(ctx context.Context, childID string) (store.Child, error) {
	return retry.Value(ctx, e.retry, store.IsTransient, func(ctx context.Context) (store.Child, error) {
		return e.store.Repos().Children.Get(ctx, childID)
	})
}

// Children lists a user's children.
func (e *Engine) Children(ctx context.Context, userID string) ([]store.Child, error) {
	return e.store.Repos().Children.ListByUser(ctx, userID)
}

// AgeOf returns the child's age today, rounded up.
func (e *Engine) AgeOf(c store.Child) content.Age {
	return content.AgeAt(c.BirthDate, e.now())
}

// Resolve returns the question set for the child's current age.
func (e *Engine) Resolve(c store.Child) (content.Resolution, error) {
	return e.cat.Resolve(e.AgeOf(c))
}

// Session returns a session by ID.
func (e *Engine) Session(ctx context.Context, sessionID string) (session.Session, error) {
	return retry.Value(ctx, e.retry, store.IsTransient, func(ctx context.Context) (session.Session, error) {
		return e.store.Repos().Sessions.Get(ctx, sessionID)
	})
}

// CurrentQuestion returns the question at the session cursor.
func (e *Engine) CurrentQuestion(s session.Session) (content.Question, bool) {
	if s.Status == session.StatusCompleted {
		return content.Question{}, false
	}
	id, ok := s.CurrentQuestionID()
	if !ok {
		return content.Question{}, false
	}
	return e.cat.Question(id)
}

// Badges returns the child's unlocked badges.
func (e *Engine) Badges(ctx context.Context, childID string) ([]badges.UnlockedBadge, error) {
	return e.store.Repos().Badges.ListUnlocked(ctx, childID)
}

// Notifications returns the child's outbox events after seq.
func (e *Engine) Notifications(ctx context.Context, childID string, after int64, limit int) ([]notify.Event, error) {
	return e.store.Repos().Notifications.ListByChild(ctx, childID, after, limit)
}
