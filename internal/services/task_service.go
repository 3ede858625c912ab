package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskforge/internal/dto"
	"taskforge/internal/logger"
	"taskforge/internal/models"
	"taskforge/internal/repository"
	"taskforge/internal/utils"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTitleRequired = errors.New("title is required")
	ErrTitleEmpty    = errors.New("title cannot be empty")
)

// TaskService handles the task hierarchy business logic. Every operation that
// mutates or reads a single task goes through the guarded owner-scoped
// lookup; "belongs to someone else" and "does not exist" are deliberately the
// same ErrTaskNotFound so existence never leaks across user boundaries.
type TaskService struct {
	taskRepo       repository.TaskRepository
	userRepo       repository.UserRepository
	attachmentRepo repository.AttachmentRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, attachmentRepo repository.AttachmentRepository) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		attachmentRepo: attachmentRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      *time.Time
	UserID       string
	ParentTaskID *string
}

// UpdateTaskInput represents a partial update; nil fields are left untouched
type UpdateTaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// CreateTask creates a task, optionally under a parent. The owner must
// resolve to an existing user, and the parent (when given) must pass the
// guarded lookup, which rules out foreign, deleted and unknown parents in one
// step.
func (s *TaskService) CreateTask(input CreateTaskInput) (*dto.TaskSummary, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify task owner: %w", err)
	}

	if input.ParentTaskID != nil {
		parent, err := s.taskRepo.FindByIDAndUser(*input.ParentTaskID, input.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to verify parent task: %w", err)
		}
		// Self-parenting is impossible here (the task has no id yet), and a
		// fresh task has no children, so no cycle can be introduced either.
		input.ParentTaskID = &parent.ID
	}

	task := &models.Task{
		Title:        input.Title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		UserID:       input.UserID,
		ParentTaskID: input.ParentTaskID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	summary := dto.ToTaskSummary(*task, 0)
	return &summary, nil
}

// GetTask returns a task via the guarded lookup
func (s *TaskService) GetTask(id, userID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByIDAndUser(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// GetTaskSummary returns a single task as a summary with its non-deleted
// direct child count
func (s *TaskService) GetTaskSummary(id, userID string) (*dto.TaskSummary, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}
	return s.toSummaryWithCount(*task, userID)
}

// UpdateTask applies a partial update. Omitted fields keep their values;
// there is no way to clear a field through this path.
func (s *TaskService) UpdateTask(id string, input UpdateTaskInput, userID string) (*dto.TaskSummary, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.IsCompleted != nil {
		task.IsCompleted = *input.IsCompleted
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.toSummaryWithCount(*task, userID)
}

// SetCompleted unconditionally overwrites the completion flag
func (s *TaskService) SetCompleted(id string, completed bool, userID string) (*dto.TaskSummary, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}

	task.IsCompleted = completed
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to set completion: %w", err)
	}

	return s.toSummaryWithCount(*task, userID)
}

// DeleteTask soft deletes a task. A second delete finds nothing through the
// guarded lookup and reports ErrTaskNotFound. Subtasks are not cascaded.
func (s *TaskService) DeleteTask(id, userID string) error {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListTasks returns all non-deleted tasks for a user, newest first
func (s *TaskService) ListTasks(userID string) ([]dto.TaskSummary, error) {
	tasks, err := s.taskRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.toSummariesWithCounts(tasks, userID)
}

// ListTasksPaged returns one page of non-deleted tasks plus the total count
func (s *TaskService) ListTasksPaged(userID string, req utils.PageRequest) ([]dto.TaskSummary, int64, error) {
	tasks, total, err := s.taskRepo.ListByUserPaged(userID, req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	summaries, err := s.toSummariesWithCounts(tasks, userID)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// ListAllTasks bypasses the soft-delete filter. Administrative listing only.
func (s *TaskService) ListAllTasks(userID string) ([]dto.TaskSummary, error) {
	tasks, err := s.taskRepo.ListAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list all tasks: %w", err)
	}
	return s.toSummariesWithCounts(tasks, userID)
}

// GetRootTasks returns non-deleted tasks without a parent
func (s *TaskService) GetRootTasks(userID string) ([]dto.TaskSummary, error) {
	tasks, err := s.taskRepo.FindRoots(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list root tasks: %w", err)
	}
	return s.toSummariesWithCounts(tasks, userID)
}

// GetSubtasks returns the direct non-deleted children of a parent. A missing
// or foreign parent yields an empty list, not an error: the child query is
// already owner-scoped.
func (s *TaskService) GetSubtasks(parentTaskID, userID string) ([]dto.TaskSummary, error) {
	tasks, err := s.taskRepo.FindChildren([]string{parentTaskID}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return s.toSummariesWithCounts(tasks, userID)
}

// GetSubtasksRecursively walks the subtask tree breadth-first, one child
// fetch per level, bounded by maxDepth. A visited set guards against a
// corrupted cyclic parent chain; the depth bound alone already guarantees
// termination. Results are grouped by depth, newest first within a depth.
func (s *TaskService) GetSubtasksRecursively(parentTaskID, userID string, maxDepth int) ([]dto.TaskSummary, error) {
	if maxDepth <= 0 {
		return []dto.TaskSummary{}, nil
	}

	visited := map[string]struct{}{parentTaskID: {}}
	frontier := []string{parentTaskID}
	var collected []models.Task

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		children, err := s.taskRepo.FindChildren(frontier, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subtasks at depth %d: %w", depth+1, err)
		}

		next := make([]string, 0, len(children))
		for _, child := range children {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}
			collected = append(collected, child)
			next = append(next, child.ID)
		}
		frontier = next
	}

	return s.toSummariesWithCounts(collected, userID)
}

// GetTaskWithSubtasks returns the task as a nested summary tree, expanded up
// to maxDepth levels below the root.
func (s *TaskService) GetTaskWithSubtasks(id, userID string, maxDepth int) (*dto.TaskSummary, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}

	root := dto.ToTaskSummary(*task, 0)
	visited := map[string]struct{}{task.ID: {}}
	if err := s.expandSubtasks(&root, userID, maxDepth, visited); err != nil {
		return nil, err
	}
	return &root, nil
}

// expandSubtasks fills in a node's subtask list. For expanded nodes the
// subtask count is the materialized list size; at the depth cut-off it is the
// true immediate non-deleted child count with no nested list. Callers of the
// API see both readings, which mirrors the behavior this endpoint has always
// had.
func (s *TaskService) expandSubtasks(node *dto.TaskSummary, userID string, depth int, visited map[string]struct{}) error {
	children, err := s.taskRepo.FindChildren([]string{node.ID}, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch subtasks: %w", err)
	}

	if depth <= 0 || len(children) == 0 {
		node.SubtaskCount = len(children)
		return nil
	}

	subtasks := make([]dto.TaskSummary, 0, len(children))
	for _, child := range children {
		if _, seen := visited[child.ID]; seen {
			continue
		}
		visited[child.ID] = struct{}{}

		childNode := dto.ToTaskSummary(child, 0)
		if err := s.expandSubtasks(&childNode, userID, depth-1, visited); err != nil {
			return err
		}
		subtasks = append(subtasks, childNode)
	}

	node.Subtasks = subtasks
	node.SubtaskCount = len(subtasks)
	return nil
}

// GetTaskDetail returns the enriched projection: due-date derived fields plus
// linked attachments. Categories and comments are placeholders for planned
// features and always empty.
func (s *TaskService) GetTaskDetail(id, userID string) (*dto.TaskDetail, error) {
	task, err := s.GetTask(id, userID)
	if err != nil {
		return nil, err
	}
	return s.toTaskDetail(*task, userID)
}

// ListAllTaskDetails returns the detail projection for every non-deleted task
func (s *TaskService) ListAllTaskDetails(userID string) ([]dto.TaskDetail, error) {
	tasks, err := s.taskRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	details := make([]dto.TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		detail, err := s.toTaskDetail(task, userID)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// InsertMock creates a canned task for quick manual testing
func (s *TaskService) InsertMock(userID string) (*dto.TaskSummary, error) {
	return s.CreateTask(CreateTaskInput{
		Title:       "Mock Task",
		Description: "Generated by /tasks/mock",
		UserID:      userID,
	})
}

// LinkAttachment links an existing attachment to a task. Both must belong to
// the caller; linking twice is a no-op.
func (s *TaskService) LinkAttachment(taskID, attachmentID, userID string) error {
	task, err := s.GetTask(taskID, userID)
	if err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}
	if attachment.UserID != userID {
		return ErrAttachmentForbidden
	}

	if _, err := s.attachmentRepo.FindLink(task.ID, attachment.ID); err == nil {
		return nil // already linked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing link: %w", err)
	}

	if err := s.attachmentRepo.CreateLink(&models.TaskAttachment{
		TaskID:       task.ID,
		AttachmentID: attachment.ID,
	}); err != nil {
		return fmt.Errorf("failed to link attachment: %w", err)
	}
	return nil
}

// UnlinkAttachment removes the link between one task and one attachment
func (s *TaskService) UnlinkAttachment(taskID, attachmentID, userID string) error {
	if _, err := s.GetTask(taskID, userID); err != nil {
		return err
	}

	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}
	if attachment.UserID != userID {
		return ErrAttachmentForbidden
	}

	if err := s.attachmentRepo.DeleteLink(taskID, attachmentID); err != nil {
		return fmt.Errorf("failed to unlink attachment: %w", err)
	}
	return nil
}

// UnlinkAllAttachments removes every attachment link from a task
func (s *TaskService) UnlinkAllAttachments(taskID, userID string) error {
	if _, err := s.GetTask(taskID, userID); err != nil {
		return err
	}

	if err := s.attachmentRepo.DeleteLinksByTask(taskID); err != nil {
		return fmt.Errorf("failed to unlink attachments: %w", err)
	}
	return nil
}

func (s *TaskService) toSummaryWithCount(task models.Task, userID string) (*dto.TaskSummary, error) {
	counts, err := s.taskRepo.CountChildren([]string{task.ID}, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}
	summary := dto.ToTaskSummary(task, int(counts[task.ID]))
	return &summary, nil
}

func (s *TaskService) toSummariesWithCounts(tasks []models.Task, userID string) ([]dto.TaskSummary, error) {
	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	counts, err := s.taskRepo.CountChildren(ids, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count subtasks: %w", err)
	}
	return dto.ToTaskSummaries(tasks, counts), nil
}

func (s *TaskService) toTaskDetail(task models.Task, userID string) (*dto.TaskDetail, error) {
	now := time.Now()

	overdue := task.DueDate != nil && now.After(*task.DueDate) && !task.IsCompleted

	var daysUntilDue *int64
	if task.DueDate != nil {
		days := int64(task.DueDate.Sub(now) / (24 * time.Hour))
		daysUntilDue = &days
	}

	links, err := s.attachmentRepo.FindLinksByTask(task.ID)
	if err != nil {
		logger.Log.Errorw("failed to load attachments for task detail", "task_id", task.ID, "err", err)
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}

	attachments := make([]dto.AttachmentInfo, 0, len(links))
	for _, link := range links {
		if link.Attachment.UserID != userID {
			continue
		}
		attachments = append(attachments, dto.ToAttachmentInfo(link.Attachment))
	}

	return &dto.TaskDetail{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		IsCompleted:  task.IsCompleted,
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
		Overdue:      overdue,
		DaysUntilDue: daysUntilDue,
		Attachments:  attachments,
		Categories:   []string{},
		Comments:     []string{},
	}, nil
}
