package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/content"
)

var responseColumns = []string{
	"id", "session_id", "child_id", "question_id", "dimension",
	"answer", "feedback", "missing_alert", "activity", "responded_at",
}

type responseRepo struct{ conn }

func (r *responseRepo) Upsert(ctx context.Context, resp answers.Response) (answers.Response, error) {
	// created_at is written once; a re-answer only moves responded_at.
	ins := r.b.Insert(ResponsesTable.Name).
		Columns(append(responseColumns, "created_at")...).
		Values(
			resp.ID, resp.SessionID, resp.ChildID, resp.QuestionID, string(resp.Dimension),
			int(resp.Answer), resp.Feedback, resp.MissingAlert, resp.Activity, utc(resp.RespondedAt),
			utc(resp.RespondedAt),
		).
		OnConflict(
			entsql.ConflictColumns("session_id", "question_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("answer")
				u.SetExcluded("feedback")
				u.SetExcluded("missing_alert")
				u.SetExcluded("activity")
				u.SetExcluded("responded_at")
			}),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return answers.Response{}, fmt.Errorf("upsert response: %w", err)
	}

	// The stored row keeps the ID of the first response to the question.
	stored, err := r.Get(ctx, resp.SessionID, resp.QuestionID)
	if err != nil {
		return answers.Response{}, fmt.Errorf("read upserted response: %w", err)
	}
	return stored, nil
}

func (r *responseRepo) Get(ctx context.Context, sessionID, questionID string) (answers.Response, error) {
	sel := r.b.Select(responseColumns...).
		From(r.b.Table(ResponsesTable.Name)).
		Where(entsql.And(
			entsql.EQ("session_id", sessionID),
			entsql.EQ("question_id", questionID),
		))
	resp, err := scanResponse(r.queryRow(ctx, sel))
	if err != nil {
		return answers.Response{}, fmt.Errorf("get response to %s in session %s: %w", questionID, sessionID, notFound(err))
	}
	return resp, nil
}

func (r *responseRepo) ListBySession(ctx context.Context, sessionID string) ([]answers.Response, error) {
	sel := r.b.Select(responseColumns...).
		From(r.b.Table(ResponsesTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("responded_at", "id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []answers.Response
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *responseRepo) AnsweredQuestionIDs(ctx context.Context, childID string) ([]string, error) {
	sel := r.b.Select("question_id").
		Distinct().
		From(r.b.Table(ResponsesTable.Name)).
		Where(entsql.EQ("child_id", childID)).
		OrderBy("question_id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query answered questions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *responseRepo) Count(ctx context.Context, childID string) (int, error) {
	n, err := r.count(ctx, ResponsesTable.Name, entsql.EQ("child_id", childID))
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func (r *responseRepo) FirstRespondedAt(ctx context.Context, childID string) (time.Time, error) {
	sel := r.b.Select("created_at").
		From(r.b.Table(ResponsesTable.Name)).
		Where(entsql.And(
			entsql.EQ("child_id", childID),
			entsql.NotNull("created_at"),
		)).
		OrderBy("created_at").
		Limit(1)
	var at sql.NullTime
	err := r.queryRow(ctx, sel).Scan(&at)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return time.Time{}, nil
	case err != nil:
		return time.Time{}, fmt.Errorf("first response time: %w", err)
	case !at.Valid:
		return time.Time{}, nil
	}
	return at.Time.UTC(), nil
}

func scanResponse(row rowScanner) (answers.Response, error) {
	var (
		resp   answers.Response
		dim    string
		answer int
	)
	err := row.Scan(
		&resp.ID, &resp.SessionID, &resp.ChildID, &resp.QuestionID, &dim,
		&answer, &resp.Feedback, &resp.MissingAlert, &resp.Activity, &resp.RespondedAt,
	)
	if err != nil {
		return answers.Response{}, err
	}
	resp.Dimension = content.Dimension(dim)
	resp.Answer = answers.Value(answer)
	resp.RespondedAt = resp.RespondedAt.UTC()
	return resp, nil
}
