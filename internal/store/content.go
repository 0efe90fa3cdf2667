package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type contentRepo struct{ conn }

func (r *contentRepo) RecordVersion(ctx context.Context, v ContentVersion) error {
	ins := r.b.Insert(ContentVersionsTable.Name).
		Columns("version", "bands", "questions", "loaded_at").
		Values(v.Version, v.Bands, v.Questions, utc(v.LoadedAt)).
		OnConflict(
			entsql.ConflictColumns("version"),
			entsql.DoNothing(),
		)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("record content version %s: %w", v.Version, err)
	}
	return nil
}

func (r *contentRepo) LatestVersion(ctx context.Context) (ContentVersion, error) {
	sel := r.b.Select("version", "bands", "questions", "loaded_at").
		From(r.b.Table(ContentVersionsTable.Name)).
		OrderBy(entsql.Desc("id")).
		Limit(1)
	var v ContentVersion
	if err := r.queryRow(ctx, sel).Scan(&v.Version, &v.Bands, &v.Questions, &v.LoadedAt); err != nil {
		return ContentVersion{}, fmt.Errorf("latest content version: %w", notFound(err))
	}
	v.LoadedAt = v.LoadedAt.UTC()
	return v, nil
}
