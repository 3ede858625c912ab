package repository

import (
	"taskforge/internal/models"
	"taskforge/internal/utils"
)

// TaskRepository defines the interface for task data access. Lookups that
// take a userID are owner-scoped and exclude soft-deleted rows; they are the
// single ownership gate for every mutation path.
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByIDAndUser is the guarded lookup: id + owner + not soft-deleted
	FindByIDAndUser(id, userID string) (*models.Task, error)

	// ListByUser retrieves all non-deleted tasks for a user, newest first
	ListByUser(userID string) ([]models.Task, error)

	// ListByUserPaged retrieves one page of non-deleted tasks plus the total count
	ListByUserPaged(userID string, req utils.PageRequest) ([]models.Task, int64, error)

	// ListAllByUser bypasses the soft-delete filter (administrative listing)
	ListAllByUser(userID string) ([]models.Task, error)

	// FindChildren returns the direct non-deleted children of the given
	// parents, owner-scoped, newest first. One call per BFS level.
	FindChildren(parentIDs []string, userID string) ([]models.Task, error)

	// FindRoots returns non-deleted tasks without a parent
	FindRoots(userID string) ([]models.Task, error)

	// CountChildren counts non-deleted direct children per parent id
	CountChildren(parentIDs []string, userID string) (map[string]int64, error)

	// Update persists changes to a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id string) error
}

// AttachmentRepository defines the interface for attachment metadata and
// task-attachment link rows. FindByID is deliberately not owner-scoped; the
// service layer turns an owner mismatch into Forbidden.
type AttachmentRepository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction; any error rolls every write inside fn back
	Transaction(fn func(AttachmentRepository) error) error

	// Create persists attachment metadata
	Create(attachment *models.Attachment) error

	// FindByID finds an attachment by raw id
	FindByID(id string) (*models.Attachment, error)

	// Delete removes the metadata row
	Delete(id string) error

	// CreateLink creates a task-attachment link row
	CreateLink(link *models.TaskAttachment) error

	// FindLink finds a specific link row
	FindLink(taskID, attachmentID string) (*models.TaskAttachment, error)

	// FindLinksByTask lists link rows for a task with attachments preloaded
	FindLinksByTask(taskID string) ([]models.TaskAttachment, error)

	// DeleteLink removes one link row
	DeleteLink(taskID, attachmentID string) error

	// DeleteLinksByAttachment removes every link row for an attachment
	DeleteLinksByAttachment(attachmentID string) error

	// DeleteLinksByTask removes every link row for a task
	DeleteLinksByTask(taskID string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindActiveByUsername finds an active user by username
	FindActiveByUsername(username string) (*models.User, error)

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(username string) (bool, error)

	// ExistsByEmail reports whether the email is taken
	ExistsByEmail(email string) (bool, error)

	// List returns all users
	List() ([]models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error
}
