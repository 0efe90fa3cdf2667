package store

import (
	"context"
	"time"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/badges"
	"github.com/marcoskids/marcos/internal/notify"
	"github.com/marcoskids/marcos/internal/progress"
	"github.com/marcoskids/marcos/internal/session"
)

// Child is a registered child. BirthDate is the source of truth for age.
type Child struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentVersion records a catalogue version the service has loaded.
type ContentVersion struct {
	Version   string
	Bands     int
	Questions int
	LoadedAt  time.Time
}

// ChildRepo manages children.
type ChildRepo interface {
	Create(ctx context.Context, c Child) error
	Get(ctx context.Context, id string) (Child, error)
	ListByUser(ctx context.Context, userID string) ([]Child, error)

	// ListAll returns up to limit children with ID > after, ordered by ID.
	// A limit <= 0 means no limit.
	ListAll(ctx context.Context, after string, limit int) ([]Child, error)
}

// SessionRepo manages sessions.
type SessionRepo interface {
	Create(ctx context.Context, s session.Session) error
	Get(ctx context.Context, id string) (session.Session, error)
	Update(ctx context.Context, s session.Session) error

	// OpenForChild returns the child's most recent active or paused session.
	OpenForChild(ctx context.Context, childID string) (session.Session, error)

	ListByChild(ctx context.Context, childID string) ([]session.Session, error)
	CountCompleted(ctx context.Context, childID string) (int, error)
}

// ResponseRepo manages responses.
type ResponseRepo interface {
	// Upsert stores r, replacing any earlier response to the same
	// (session, question). Returns the stored record.
	Upsert(ctx context.Context, r answers.Response) (answers.Response, error)

	// Get returns the response to questionID within the session.
	Get(ctx context.Context, sessionID, questionID string) (answers.Response, error)

	ListBySession(ctx context.Context, sessionID string) ([]answers.Response, error)

	// AnsweredQuestionIDs returns the distinct question IDs the child has
	// answered across every session.
	AnsweredQuestionIDs(ctx context.Context, childID string) ([]string, error)

	Count(ctx context.Context, childID string) (int, error)

	// FirstRespondedAt returns when the child's earliest response was
	// first recorded, or the zero time if there is none. Re-answering a
	// question does not move it.
	FirstRespondedAt(ctx context.Context, childID string) (time.Time, error)
}

// BadgeRepo manages unlocked badges. It satisfies badges.Repo.
type BadgeRepo interface {
	badges.Repo
}

// NotificationRepo is the notification outbox.
type NotificationRepo interface {
	// Append stores ev and returns it with its sequence number set.
	Append(ctx context.Context, ev notify.Event) (notify.Event, error)

	// ListByChild returns the child's events with Seq > after, oldest first.
	ListByChild(ctx context.Context, childID string, after int64, limit int) ([]notify.Event, error)
}

// ProgressRepo is the denormalized progress cache. It is never
// authoritative: every write replaces the child's rows wholesale.
type ProgressRepo interface {
	Replace(ctx context.Context, agg progress.Aggregate) error
	Get(ctx context.Context, childID string) (progress.Aggregate, error)
}

// ContentRepo tracks loaded catalogue versions.
type ContentRepo interface {
	// RecordVersion stores v unless the version is already known.
	RecordVersion(ctx context.Context, v ContentVersion) error

	// LatestVersion returns the most recently loaded version.
	LatestVersion(ctx context.Context) (ContentVersion, error)
}

// Repos bundles every repository over one connection or transaction.
type Repos struct {
	Children      ChildRepo
	Sessions      SessionRepo
	Responses     ResponseRepo
	Badges        BadgeRepo
	Notifications NotificationRepo
	Progress      ProgressRepo
	Content       ContentRepo
}

func newRepos(c conn) Repos {
	return Repos{
		Children:      &childRepo{c},
		Sessions:      &sessionRepo{c},
		Responses:     &responseRepo{c},
		Badges:        &badgeRepo{c},
		Notifications: &notificationRepo{c},
		Progress:      &progressRepo{c},
		Content:       &contentRepo{c},
	}
}
