package models

import "time"

// TaskAttachment links attachments to tasks. One attachment may be linked to
// any number of tasks, including none.
type TaskAttachment struct {
	TaskID       string    `gorm:"type:char(36);primarykey" json:"task_id"`
	AttachmentID string    `gorm:"type:char(36);primarykey" json:"attachment_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Task       Task       `gorm:"foreignKey:TaskID" json:"-"`
	Attachment Attachment `gorm:"foreignKey:AttachmentID" json:"-"`
}
