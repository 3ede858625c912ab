package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskforge/internal/dto"
	apierrors "taskforge/internal/errors"
	"taskforge/internal/logger"
	"taskforge/internal/middleware"
	"taskforge/internal/services"
	"taskforge/internal/utils"
)

// defaultTreeDepth bounds subtask expansion when the client does not ask for
// a specific depth.
const defaultTreeDepth = 3

// TaskHandler exposes the task hierarchy endpoints.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns one page of the caller's non-deleted tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	req := utils.ParsePageRequest(c)
	tasks, total, err := h.taskService.ListTasksPaged(userID, req)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.Header("Link", utils.LinkHeader(c.Request.URL.Path, req, total))
	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: tasks,
		Pagination: utils.PaginationResponse{
			Page:  req.Page,
			Size:  req.Size,
			Total: total,
		},
	})
}

// CreateTask creates a new task, optionally under a parent.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title        string     `json:"title" binding:"required"`
		Description  string     `json:"description"`
		DueDate      *time.Time `json:"due_date"`
		ParentTaskID *string    `json:"parent_task_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequestBody(c)
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		UserID:       userID,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTask returns a single task summary.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskSummary(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update; omitted fields are left untouched.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsCompleted *bool   `json:"is_completed"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequestBody(c)
		return
	}

	task, err := h.taskService.UpdateTask(c.Param("id"), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetCompleted overwrites the completion flag.
func (h *TaskHandler) SetCompleted(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type SetCompletedRequest struct {
		Completed *bool `json:"completed" binding:"required"`
	}

	var req SetCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequestBody(c)
		return
	}

	task, err := h.taskService.SetCompleted(c.Param("id"), *req.Completed, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask soft-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAllTasks bypasses the soft-delete filter (administrative listing).
func (h *TaskHandler) ListAllTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAllTasks(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ListAllTaskDetails returns the detail projection for every task.
func (h *TaskHandler) ListAllTaskDetails(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	details, err := h.taskService.ListAllTaskDetails(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetRootTasks returns tasks without a parent.
func (h *TaskHandler) GetRootTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetRootTasks(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskDetail returns the enriched single-task projection.
func (h *TaskHandler) GetTaskDetail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	detail, err := h.taskService.GetTaskDetail(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetSubtasks returns the direct children of a task.
func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetSubtasks(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetSubtasksRecursively returns all descendants down to maxDepth levels.
func (h *TaskHandler) GetSubtasksRecursively(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	maxDepth, ok := parseMaxDepth(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetSubtasksRecursively(c.Param("id"), userID, maxDepth)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskWithSubtasks returns the task as a nested subtask tree.
func (h *TaskHandler) GetTaskWithSubtasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	maxDepth, ok := parseMaxDepth(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTaskWithSubtasks(c.Param("id"), userID, maxDepth)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// InsertMock creates a canned task for quick manual testing.
func (h *TaskHandler) InsertMock(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.InsertMock(userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// LinkAttachment links an existing attachment to a task.
func (h *TaskHandler) LinkAttachment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.LinkAttachment(c.Param("id"), c.Param("attachmentId"), userID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlinkAttachment removes one attachment link from a task.
func (h *TaskHandler) UnlinkAttachment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.UnlinkAttachment(c.Param("id"), c.Param("attachmentId"), userID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlinkAllAttachments removes every attachment link from a task.
func (h *TaskHandler) UnlinkAllAttachments(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.taskService.UnlinkAllAttachments(c.Param("id"), userID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseMaxDepth(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("maxDepth", strconv.Itoa(defaultTreeDepth))
	maxDepth, err := strconv.Atoi(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid maxDepth")
		return 0, false
	}
	return maxDepth, true
}

func requireUser(c *gin.Context) (string, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return "", false
	}
	return userID, true
}

func respondBadRequestBody(c *gin.Context) {
	apierrors.BadRequest(c, "Invalid request body")
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAttachmentForbidden):
		apierrors.Forbidden(c, err.Error())
	default:
		logger.Log.Errorw("unexpected task error", "err", err)
		apierrors.InternalError(c)
	}
}
