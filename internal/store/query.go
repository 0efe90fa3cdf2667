package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (c conn) exec(ctx context.Context, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	return c.q.ExecContext(ctx, query, args...)
}

func (c conn) query(ctx context.Context, q entsql.Querier) (*sql.Rows, error) {
	query, args := q.Query()
	return c.q.QueryContext(ctx, query, args...)
}

func (c conn) queryRow(ctx context.Context, q entsql.Querier) *sql.Row {
	query, args := q.Query()
	return c.q.QueryRowContext(ctx, query, args...)
}

// count runs a COUNT(*) over table filtered by where.
func (c conn) count(ctx context.Context, table string, where *entsql.Predicate) (int, error) {
	sel := c.b.Select(entsql.Count("*")).From(c.b.Table(table)).Where(where)
	var n int
	if err := c.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// utc normalizes timestamps to UTC before they are written.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
