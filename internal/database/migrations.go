package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database.
// Only meaningful on PostgreSQL; pg_indexes is queried to keep this idempotent.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_project_id", "project_id"},
		{"tasks", "idx_tasks_assigned_user_id", "assigned_user_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		{"task_histories", "idx_task_histories_task_id", "task_id"},
		{"task_histories", "idx_task_histories_modified_at", "modified_at"},

		{"notifications", "idx_notifications_user_id", "user_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
