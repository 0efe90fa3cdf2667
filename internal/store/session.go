package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/session"
)

var sessionColumns = []string{
	"id", "user_id", "child_id", "band_id", "content_version",
	"plan", "answered", "answered_count", "total_questions", "cursor_pos",
	"current_dimension", "status", "started_at", "completed_at", "updated_at",
}

type sessionRepo struct{ conn }

func (r *sessionRepo) Create(ctx context.Context, s session.Session) error {
	vals, err := sessionValues(s)
	if err != nil {
		return err
	}
	ins := r.b.Insert(SessionsTable.Name).Columns(sessionColumns...).Values(vals...)
	if _, err := r.exec(ctx, ins); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert session for child %s: %w: %w", s.ChildID, ErrConflict, err)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Update(ctx context.Context, s session.Session) error {
	vals, err := sessionValues(s)
	if err != nil {
		return err
	}
	upd := r.b.Update(SessionsTable.Name).Where(entsql.EQ("id", s.ID))
	// Identity columns (id, user, child, band, version) never change.
	for i, col := range sessionColumns {
		if i < 5 {
			continue
		}
		upd = upd.Set(col, vals[i])
	}
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update session %s: %w", s.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (session.Session, error) {
	sel := r.b.Select(sessionColumns...).
		From(r.b.Table(SessionsTable.Name)).
		Where(entsql.EQ("id", id))
	s, err := scanSession(r.queryRow(ctx, sel))
	if err != nil {
		return session.Session{}, fmt.Errorf("get session %s: %w", id, notFound(err))
	}
	return s, nil
}

func (r *sessionRepo) OpenForChild(ctx context.Context, childID string) (session.Session, error) {
	sel := r.b.Select(sessionColumns...).
		From(r.b.Table(SessionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("child_id", childID),
			entsql.In("status", string(session.StatusActive), string(session.StatusPaused)),
		)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id")).
		Limit(1)
	s, err := scanSession(r.queryRow(ctx, sel))
	if err != nil {
		return session.Session{}, fmt.Errorf("open session for child %s: %w", childID, notFound(err))
	}
	return s, nil
}

func (r *sessionRepo) ListByChild(ctx context.Context, childID string) ([]session.Session, error) {
	sel := r.b.Select(sessionColumns...).
		From(r.b.Table(SessionsTable.Name)).
		Where(entsql.EQ("child_id", childID)).
		OrderBy("started_at", "id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionRepo) CountCompleted(ctx context.Context, childID string) (int, error) {
	n, err := r.count(ctx, SessionsTable.Name, entsql.And(
		entsql.EQ("child_id", childID),
		entsql.EQ("status", string(session.StatusCompleted)),
	))
	if err != nil {
		return 0, fmt.Errorf("count completed sessions: %w", err)
	}
	return n, nil
}

func sessionValues(s session.Session) ([]any, error) {
	plan, err := json.Marshal(s.Plan)
	if err != nil {
		return nil, fmt.Errorf("encode session plan: %w", err)
	}
	answeredIDs := make([]string, 0, len(s.Answered))
	for id, ok := range s.Answered {
		if ok {
			answeredIDs = append(answeredIDs, id)
		}
	}
	slices.Sort(answeredIDs)
	answered, err := json.Marshal(answeredIDs)
	if err != nil {
		return nil, fmt.Errorf("encode answered set: %w", err)
	}
	return []any{
		s.ID, s.UserID, s.ChildID, s.BandID, s.ContentVersion,
		string(plan), string(answered), s.AnsweredCount, s.TotalQuestions, s.Cursor,
		string(s.CurrentDimension), string(s.Status), utc(s.StartedAt), nullTime(s.CompletedAt), utc(s.UpdatedAt),
	}, nil
}

func scanSession(row rowScanner) (session.Session, error) {
	var (
		s              session.Session
		plan, answered string
		dim, status    string
		completedAt    sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.ChildID, &s.BandID, &s.ContentVersion,
		&plan, &answered, &s.AnsweredCount, &s.TotalQuestions, &s.Cursor,
		&dim, &status, &s.StartedAt, &completedAt, &s.UpdatedAt,
	)
	if err != nil {
		return session.Session{}, err
	}

	if err := json.Unmarshal([]byte(plan), &s.Plan); err != nil {
		return session.Session{}, fmt.Errorf("decode session plan: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(answered), &ids); err != nil {
		return session.Session{}, fmt.Errorf("decode answered set: %w", err)
	}
	s.Answered = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.Answered[id] = true
	}

	s.CurrentDimension = content.Dimension(dim)
	s.Status = session.Status(status)
	s.StartedAt = s.StartedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		s.CompletedAt = &t
	}
	return s, nil
}
