package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	sqldialect "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textType maps long string columns to unbounded text on every backend.
var textType = map[string]string{
	dialect.SQLite:   "text",
	dialect.Postgres: "text",
}

var (
	// ChildrenColumns holds the columns for the "children" table.
	ChildrenColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "birth_date", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ChildrenTable holds the schema information for the "children" table.
	ChildrenTable = &schema.Table{
		Name:       "children",
		Columns:    ChildrenColumns,
		PrimaryKey: []*schema.Column{ChildrenColumns[0]},
		Indexes: []*schema.Index{
			{Name: "child_user_id", Columns: []*schema.Column{ChildrenColumns[1]}},
		},
	}

	// SessionsColumns holds the columns for the "sessions" table.
	SessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "child_id", Type: field.TypeString},
		{Name: "band_id", Type: field.TypeString},
		{Name: "content_version", Type: field.TypeString},
		{Name: "plan", Type: field.TypeString, SchemaType: textType},
		{Name: "answered", Type: field.TypeString, SchemaType: textType},
		{Name: "answered_count", Type: field.TypeInt},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "cursor_pos", Type: field.TypeInt},
		{Name: "current_dimension", Type: field.TypeString},
		{Name: "status", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SessionsTable holds the schema information for the "sessions" table.
	SessionsTable = &schema.Table{
		Name:       "sessions",
		Columns:    SessionsColumns,
		PrimaryKey: []*schema.Column{SessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_child_id_status", Columns: []*schema.Column{SessionsColumns[2], SessionsColumns[11]}},
			// At most one open session per child, across processes.
			{
				Name:       "session_child_id_open",
				Unique:     true,
				Columns:    []*schema.Column{SessionsColumns[2]},
				Annotation: entsql.IndexWhere("status IN ('active', 'paused')"),
			},
		},
	}

	// ResponsesColumns holds the columns for the "responses" table.
	ResponsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "child_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "dimension", Type: field.TypeString},
		{Name: "answer", Type: field.TypeInt},
		{Name: "feedback", Type: field.TypeString, SchemaType: textType},
		{Name: "missing_alert", Type: field.TypeString, SchemaType: textType},
		{Name: "activity", Type: field.TypeString, SchemaType: textType},
		{Name: "responded_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime, Nullable: true},
	}
	// ResponsesTable holds the schema information for the "responses" table.
	ResponsesTable = &schema.Table{
		Name:       "responses",
		Columns:    ResponsesColumns,
		PrimaryKey: []*schema.Column{ResponsesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "response_session_id_question_id", Unique: true, Columns: []*schema.Column{ResponsesColumns[1], ResponsesColumns[3]}},
			{Name: "response_child_id", Columns: []*schema.Column{ResponsesColumns[2]}},
		},
	}

	// UnlockedBadgesColumns holds the columns for the "unlocked_badges" table.
	UnlockedBadgesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "child_id", Type: field.TypeString},
		{Name: "badge_id", Type: field.TypeString},
		{Name: "unlocked_at", Type: field.TypeTime},
	}
	// UnlockedBadgesTable holds the schema information for the "unlocked_badges" table.
	UnlockedBadgesTable = &schema.Table{
		Name:       "unlocked_badges",
		Columns:    UnlockedBadgesColumns,
		PrimaryKey: []*schema.Column{UnlockedBadgesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "unlockedbadge_child_id_badge_id", Unique: true, Columns: []*schema.Column{UnlockedBadgesColumns[1], UnlockedBadgesColumns[2]}},
		},
	}

	// NotificationsColumns holds the columns for the "notifications" table.
	NotificationsColumns = []*schema.Column{
		{Name: "seq", Type: field.TypeInt64, Increment: true},
		{Name: "kind", Type: field.TypeString},
		{Name: "child_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "badge_id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	// NotificationsTable holds the schema information for the "notifications" table.
	NotificationsTable = &schema.Table{
		Name:       "notifications",
		Columns:    NotificationsColumns,
		PrimaryKey: []*schema.Column{NotificationsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "notification_child_id", Columns: []*schema.Column{NotificationsColumns[2]}},
		},
	}

	// ProgressCacheColumns holds the columns for the "progress_cache" table.
	ProgressCacheColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "child_id", Type: field.TypeString},
		{Name: "dimension", Type: field.TypeString},
		{Name: "answered", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "percent", Type: field.TypeFloat64},
		{Name: "overall", Type: field.TypeFloat64},
		{Name: "computed_at", Type: field.TypeTime},
	}
	// ProgressCacheTable holds the schema information for the "progress_cache" table.
	ProgressCacheTable = &schema.Table{
		Name:       "progress_cache",
		Columns:    ProgressCacheColumns,
		PrimaryKey: []*schema.Column{ProgressCacheColumns[0]},
		Indexes: []*schema.Index{
			{Name: "progresscache_child_id_dimension", Unique: true, Columns: []*schema.Column{ProgressCacheColumns[1], ProgressCacheColumns[2]}},
		},
	}

	// ContentVersionsColumns holds the columns for the "content_versions" table.
	ContentVersionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "version", Type: field.TypeString, Unique: true},
		{Name: "bands", Type: field.TypeInt},
		{Name: "questions", Type: field.TypeInt},
		{Name: "loaded_at", Type: field.TypeTime},
	}
	// ContentVersionsTable holds the schema information for the "content_versions" table.
	ContentVersionsTable = &schema.Table{
		Name:       "content_versions",
		Columns:    ContentVersionsColumns,
		PrimaryKey: []*schema.Column{ContentVersionsColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ChildrenTable,
		SessionsTable,
		ResponsesTable,
		UnlockedBadgesTable,
		NotificationsTable,
		ProgressCacheTable,
		ContentVersionsTable,
	}
)

// migrate creates or upgrades every table.
func migrate(ctx context.Context, drv *sqldialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
