package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/marcoskids/marcos/internal/badges"
)

type badgeRepo struct{ conn }

func (r *badgeRepo) Unlock(ctx context.Context, b badges.UnlockedBadge) (bool, error) {
	ins := r.b.Insert(UnlockedBadgesTable.Name).
		Columns("child_id", "badge_id", "unlocked_at").
		Values(b.ChildID, b.BadgeID, utc(b.UnlockedAt)).
		OnConflict(
			entsql.ConflictColumns("child_id", "badge_id"),
			entsql.DoNothing(),
		)
	res, err := r.exec(ctx, ins)
	if err != nil {
		return false, fmt.Errorf("insert badge %s: %w", b.BadgeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("badge rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *badgeRepo) ListUnlocked(ctx context.Context, childID string) ([]badges.UnlockedBadge, error) {
	sel := r.b.Select("child_id", "badge_id", "unlocked_at").
		From(r.b.Table(UnlockedBadgesTable.Name)).
		Where(entsql.EQ("child_id", childID)).
		OrderBy("unlocked_at", "id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	var out []badges.UnlockedBadge
	for rows.Next() {
		var b badges.UnlockedBadge
		if err := rows.Scan(&b.ChildID, &b.BadgeID, &b.UnlockedAt); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.UnlockedAt = b.UnlockedAt.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}
