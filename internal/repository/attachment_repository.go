package repository

import (
	"gorm.io/gorm"

	"taskforge/internal/models"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Transaction runs fn against a repository bound to a single transaction
func (r *GormAttachmentRepository) Transaction(fn func(AttachmentRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormAttachmentRepository{db: tx})
	})
}

// Create persists attachment metadata
func (r *GormAttachmentRepository) Create(attachment *models.Attachment) error {
	return r.db.Create(attachment).Error
}

// FindByID finds an attachment by raw id
func (r *GormAttachmentRepository) FindByID(id string) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Delete removes the metadata row
func (r *GormAttachmentRepository) Delete(id string) error {
	return r.db.Delete(&models.Attachment{}, "id = ?", id).Error
}

// CreateLink creates a task-attachment link row
func (r *GormAttachmentRepository) CreateLink(link *models.TaskAttachment) error {
	return r.db.Create(link).Error
}

// FindLink finds a specific link row
func (r *GormAttachmentRepository) FindLink(taskID, attachmentID string) (*models.TaskAttachment, error) {
	var link models.TaskAttachment
	if err := r.db.
		Where("task_id = ? AND attachment_id = ?", taskID, attachmentID).
		First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindLinksByTask lists link rows for a task with attachments preloaded
func (r *GormAttachmentRepository) FindLinksByTask(taskID string) ([]models.TaskAttachment, error) {
	var links []models.TaskAttachment
	if err := r.db.
		Preload("Attachment").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// DeleteLink removes one link row
func (r *GormAttachmentRepository) DeleteLink(taskID, attachmentID string) error {
	return r.db.
		Where("task_id = ? AND attachment_id = ?", taskID, attachmentID).
		Delete(&models.TaskAttachment{}).Error
}

// DeleteLinksByAttachment removes every link row for an attachment
func (r *GormAttachmentRepository) DeleteLinksByAttachment(attachmentID string) error {
	return r.db.
		Where("attachment_id = ?", attachmentID).
		Delete(&models.TaskAttachment{}).Error
}

// DeleteLinksByTask removes every link row for a task
func (r *GormAttachmentRepository) DeleteLinksByTask(taskID string) error {
	return r.db.
		Where("task_id = ?", taskID).
		Delete(&models.TaskAttachment{}).Error
}
