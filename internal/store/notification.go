package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/marcoskids/marcos/internal/notify"
)

var notificationColumns = []string{"seq", "kind", "child_id", "session_id", "badge_id", "created_at"}

type notificationRepo struct{ conn }

func (r *notificationRepo) Append(ctx context.Context, ev notify.Event) (notify.Event, error) {
	ins := r.b.Insert(NotificationsTable.Name).
		Columns(notificationColumns[1:]...).
		Values(string(ev.Kind), ev.ChildID, ev.SessionID, ev.BadgeID, utc(ev.At))

	if r.postgres() {
		ins = ins.Returning("seq")
		if err := r.queryRow(ctx, ins).Scan(&ev.Seq); err != nil {
			return notify.Event{}, fmt.Errorf("append notification: %w", err)
		}
		return ev, nil
	}

	res, err := r.exec(ctx, ins)
	if err != nil {
		return notify.Event{}, fmt.Errorf("append notification: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return notify.Event{}, fmt.Errorf("notification seq: %w", err)
	}
	ev.Seq = seq
	return ev, nil
}

func (r *notificationRepo) ListByChild(ctx context.Context, childID string, after int64, limit int) ([]notify.Event, error) {
	sel := r.b.Select(notificationColumns...).
		From(r.b.Table(NotificationsTable.Name)).
		Where(entsql.And(
			entsql.EQ("child_id", childID),
			entsql.GT("seq", after),
		)).
		OrderBy("seq")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []notify.Event
	for rows.Next() {
		var (
			ev   notify.Event
			kind string
		)
		if err := rows.Scan(&ev.Seq, &kind, &ev.ChildID, &ev.SessionID, &ev.BadgeID, &ev.At); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		ev.Kind = notify.Kind(kind)
		ev.At = ev.At.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
