package database

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ProgressColumns holds the columns for the "progress" table.
	ProgressColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString, Size: 128},
		{Name: "item_id", Type: field.TypeString, Size: 255},
		{Name: "interval_days", Type: field.TypeInt, Default: 0},
		{Name: "repetition_count", Type: field.TypeInt, Default: 0},
		{Name: "ease_factor", Type: field.TypeFloat64, Default: 2.5},
		{Name: "ease_factor_exact", Type: field.TypeFloat64, Default: 2.5},
		{Name: "due_at", Type: field.TypeTime},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "lapse_count", Type: field.TypeInt, Default: 0},
		{Name: "streak_count", Type: field.TypeInt, Default: 0},
		{Name: "status", Type: field.TypeString, Size: 16, Default: "learning"},
		{Name: "last_quality", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProgressTable holds the schema information for the "progress" table.
	ProgressTable = &schema.Table{
		Name:       "progress",
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0], ProgressColumns[1]},
		Indexes: []*schema.Index{
			{
				Name:    "progress_learner_id_due_at",
				Unique:  false,
				Columns: []*schema.Column{ProgressColumns[0], ProgressColumns[6]},
			},
		},
	}

	// ReviewSessionsColumns holds the columns for the "review_sessions" table.
	ReviewSessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "learner_id", Type: field.TypeString, Size: 128},
		{Name: "review_count", Type: field.TypeInt, Default: 0},
		{Name: "correct_count", Type: field.TypeInt, Default: 0},
		{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		{Name: "duration_ms", Type: field.TypeInt64, Default: 0},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ReviewSessionsTable holds the schema information for the "review_sessions" table.
	ReviewSessionsTable = &schema.Table{
		Name:       "review_sessions",
		Columns:    ReviewSessionsColumns,
		PrimaryKey: []*schema.Column{ReviewSessionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "reviewsession_learner_id_finished_at",
				Unique:  false,
				Columns: []*schema.Column{ReviewSessionsColumns[1], ReviewSessionsColumns[7]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProgressTable,
		ReviewSessionsTable,
	}
)

// ColumnNames returns the column names of a table in declaration order.
func ColumnNames(table *schema.Table) []string {
	names := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		names[i] = col.Name
	}
	return names
}
