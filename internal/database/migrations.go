package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for owner-scoped lookups and hierarchy walks
		{"tasks", "idx_tasks_user_id_deleted_at", "user_id, deleted_at"},
		{"tasks", "idx_tasks_parent_task_id", "parent_task_id"},
		{"tasks", "idx_tasks_created_at", "created_at"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Attachment indexes
		{"attachments", "idx_attachments_user_id", "user_id"},

		// Link table indexes
		{"task_attachments", "idx_task_attachments_task_id", "task_id"},
		{"task_attachments", "idx_task_attachments_attachment_id", "attachment_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_name = ? AND index_name = ?
		`, idx.table, idx.name).Scan(&count).Error

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
