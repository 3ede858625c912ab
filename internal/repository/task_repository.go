package repository

import (
	"gorm.io/gorm"

	"taskforge/internal/database"
	"taskforge/internal/models"
	"taskforge/internal/utils"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByIDAndUser finds a task by id, filtered by owner. Soft-deleted rows
// are excluded by the default scope, so a deleted task is indistinguishable
// from an absent one.
func (r *GormTaskRepository) FindByIDAndUser(id, userID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByUser retrieves all non-deleted tasks owned by the user, newest first
func (r *GormTaskRepository) ListByUser(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByUserPaged retrieves one page of non-deleted tasks plus the total count
func (r *GormTaskRepository) ListByUserPaged(userID string, req utils.PageRequest) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	if err := query.Scopes(database.Paginate(req)).Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListAllByUser includes soft-deleted rows
func (r *GormTaskRepository) ListAllByUser(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Unscoped().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindChildren returns direct non-deleted children of the given parents
func (r *GormTaskRepository) FindChildren(parentIDs []string, userID string) ([]models.Task, error) {
	if len(parentIDs) == 0 {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := r.db.
		Where("parent_task_id IN ? AND user_id = ?", parentIDs, userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindRoots returns non-deleted tasks with no parent
func (r *GormTaskRepository) FindRoots(userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Where("parent_task_id IS NULL AND user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountChildren counts non-deleted direct children per parent id
func (r *GormTaskRepository) CountChildren(parentIDs []string, userID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ParentTaskID string
		Count        int64
	}
	err := r.db.Model(&models.Task{}).
		Select("parent_task_id, COUNT(*) AS count").
		Where("parent_task_id IN ? AND user_id = ?", parentIDs, userID).
		Group("parent_task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.ParentTaskID] = row.Count
	}
	return counts, nil
}

// Update persists changes to a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task. Subtasks and attachment links are left in
// place; the deleted parent simply stops appearing in guarded lookups.
func (r *GormTaskRepository) Delete(id string) error {
	return r.db.Delete(&models.Task{}, "id = ?", id).Error
}
