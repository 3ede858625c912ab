package dto

import (
	"time"

	"taskforge/internal/models"
	"taskforge/internal/utils"
)

// TaskSummary represents a task in list responses. Subtasks is populated
// only by the nested-tree endpoint; plain listings leave it nil.
type TaskSummary struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	IsCompleted  bool          `json:"is_completed"`
	IsDeleted    bool          `json:"is_deleted"`
	DueDate      *time.Time    `json:"due_date"`
	CreatedAt    time.Time     `json:"created_at"`
	ParentTaskID *string       `json:"parent_task_id"`
	Subtasks     []TaskSummary `json:"subtasks,omitempty"`
	SubtaskCount int           `json:"subtask_count"`
}

// TaskDetail is the enriched single-task projection. Categories and Comments
// are reserved for future use and always empty for now.
type TaskDetail struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	IsCompleted  bool             `json:"is_completed"`
	DueDate      *time.Time       `json:"due_date"`
	CreatedAt    time.Time        `json:"created_at"`
	Overdue      bool             `json:"overdue"`
	DaysUntilDue *int64           `json:"days_until_due"`
	Attachments  []AttachmentInfo `json:"attachments"`
	Categories   []string         `json:"categories"`
	Comments     []string         `json:"comments"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskSummary            `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskSummary converts a Task model to TaskSummary
func ToTaskSummary(task models.Task, subtaskCount int) TaskSummary {
	return TaskSummary{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		IsCompleted:  task.IsCompleted,
		IsDeleted:    task.DeletedAt.Valid,
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
		ParentTaskID: task.ParentTaskID,
		SubtaskCount: subtaskCount,
	}
}

// ToTaskSummaries converts tasks using a per-parent child count lookup
func ToTaskSummaries(tasks []models.Task, childCounts map[string]int64) []TaskSummary {
	summaries := make([]TaskSummary, 0, len(tasks))
	for _, task := range tasks {
		summaries = append(summaries, ToTaskSummary(task, int(childCounts[task.ID])))
	}
	return summaries
}
