package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID          string         `gorm:"type:char(36);primarykey" json:"id"`
	UserID      string         `gorm:"type:char(36);not null;index" json:"user_id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	IsCompleted bool           `gorm:"not null;default:false" json:"is_completed"`
	DueDate     *time.Time     `json:"due_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Self-reference for subtasks. Children are never eager-loaded; callers
	// fetch them through explicit subtask queries.
	ParentTaskID *string `gorm:"type:char(36);index" json:"parent_task_id"`

	// Relations
	User        User             `gorm:"foreignKey:UserID" json:"-"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
