package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var childColumns = []string{"id", "user_id", "name", "birth_date", "created_at"}

type childRepo struct{ conn }

func (r *childRepo) Create(ctx context.Context, c Child) error {
	ins := r.b.Insert(ChildrenTable.Name).
		Columns(childColumns...).
		Values(c.ID, c.UserID, c.Name, utc(c.BirthDate), utc(c.CreatedAt))
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert child: %w", err)
	}
	return nil
}

func (r *childRepo) Get(ctx context.Context, id string) (Child, error) {
	sel := r.b.Select(childColumns...).
		From(r.b.Table(ChildrenTable.Name)).
		Where(entsql.EQ("id", id))
	c, err := scanChild(r.queryRow(ctx, sel))
	if err != nil {
		return Child{}, fmt.Errorf("get child %s: %w", id, notFound(err))
	}
	return c, nil
}

func (r *childRepo) ListByUser(ctx context.Context, userID string) ([]Child, error) {
	sel := r.b.Select(childColumns...).
		From(r.b.Table(ChildrenTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("id")
	return r.list(ctx, sel)
}

func (r *childRepo) ListAll(ctx context.Context, after string, limit int) ([]Child, error) {
	sel := r.b.Select(childColumns...).
		From(r.b.Table(ChildrenTable.Name)).
		OrderBy("id")
	if after != "" {
		sel = sel.Where(entsql.GT("id", after))
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	return r.list(ctx, sel)
}

func (r *childRepo) list(ctx context.Context, sel *entsql.Selector) ([]Child, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()

	var out []Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChild(row rowScanner) (Child, error) {
	var c Child
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.BirthDate, &c.CreatedAt); err != nil {
		return Child{}, err
	}
	c.BirthDate = c.BirthDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
