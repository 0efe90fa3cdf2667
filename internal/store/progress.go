package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/progress"
)

type progressRepo struct{ conn }

func (r *progressRepo) Replace(ctx context.Context, agg progress.Aggregate) error {
	del := r.b.Delete(ProgressCacheTable.Name).Where(entsql.EQ("child_id", agg.ChildID))
	if _, err := r.exec(ctx, del); err != nil {
		return fmt.Errorf("clear progress cache: %w", err)
	}

	ins := r.b.Insert(ProgressCacheTable.Name).
		Columns("child_id", "dimension", "answered", "total", "percent", "overall", "computed_at")
	rows := 0
	for _, d := range content.AllDimensions() {
		dp, ok := agg.PerDimension[d]
		if !ok {
			continue
		}
		ins = ins.Values(agg.ChildID, string(d), dp.Answered, dp.Total, dp.Percent, agg.Overall, utc(agg.ComputedAt))
		rows++
	}
	if rows == 0 {
		return nil
	}
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("write progress cache: %w", err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, childID string) (progress.Aggregate, error) {
	sel := r.b.Select("dimension", "answered", "total", "percent", "overall", "computed_at").
		From(r.b.Table(ProgressCacheTable.Name)).
		Where(entsql.EQ("child_id", childID)).
		OrderBy("id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return progress.Aggregate{}, fmt.Errorf("query progress cache: %w", err)
	}
	defer rows.Close()

	agg := progress.Aggregate{
		ChildID:      childID,
		PerDimension: make(map[content.Dimension]progress.DimensionProgress),
	}
	for rows.Next() {
		var (
			dim string
			dp  progress.DimensionProgress
		)
		if err := rows.Scan(&dim, &dp.Answered, &dp.Total, &dp.Percent, &agg.Overall, &agg.ComputedAt); err != nil {
			return progress.Aggregate{}, fmt.Errorf("scan progress row: %w", err)
		}
		agg.PerDimension[content.Dimension(dim)] = dp
	}
	if err := rows.Err(); err != nil {
		return progress.Aggregate{}, err
	}
	if len(agg.PerDimension) == 0 {
		return progress.Aggregate{}, fmt.Errorf("progress for child %s: %w", childID, ErrNotFound)
	}
	agg.ComputedAt = agg.ComputedAt.UTC()
	return agg, nil
}
