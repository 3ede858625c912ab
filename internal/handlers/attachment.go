package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "taskforge/internal/errors"
	"taskforge/internal/logger"
	"taskforge/internal/services"
)

// AttachmentHandler exposes attachment upload, download and link endpoints.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// Upload stores a file without linking it to any task.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	input, ok := h.readUpload(c, userID)
	if !ok {
		return
	}

	info, err := h.attachmentService.UploadUnlinked(c.Request.Context(), input)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// UploadForTask stores a file and links it to the given task in one call.
func (h *AttachmentHandler) UploadForTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	input, ok := h.readUpload(c, userID)
	if !ok {
		return
	}

	info, err := h.attachmentService.UploadAndAttach(c.Request.Context(), c.Param("taskId"), input)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// ListForTask returns the attachments linked to a task.
func (h *AttachmentHandler) ListForTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	infos, err := h.attachmentService.ListByTask(c.Param("taskId"), userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

// Attach links an existing attachment to a task. Repeating the call is a
// no-op.
func (h *AttachmentHandler) Attach(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	info, err := h.attachmentService.Attach(c.Param("id"), c.Param("taskId"), userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Detach removes the attachment's links to every task it is attached to.
func (h *AttachmentHandler) Detach(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	info, err := h.attachmentService.Detach(c.Param("id"), userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetInfo returns attachment metadata.
func (h *AttachmentHandler) GetInfo(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	info, err := h.attachmentService.GetInfo(c.Param("id"), userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Download streams the attachment content back to the caller.
func (h *AttachmentHandler) Download(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	data, info, err := h.attachmentService.LoadBytes(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.FileName))
	c.Data(http.StatusOK, info.ContentType, data)
}

// Delete removes the attachment's links, its blob and its metadata.
func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondAttachmentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AttachmentHandler) readUpload(c *gin.Context, userID string) (services.UploadInput, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file")
		return services.UploadInput{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.BadRequest(c, "Unreadable file")
		return services.UploadInput{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.BadRequest(c, "Unreadable file")
		return services.UploadInput{}, false
	}

	return services.UploadInput{
		Data:         data,
		OriginalName: fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		UserID:       userID,
	}, true
}

func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAttachmentForbidden):
		apierrors.Forbidden(c, err.Error())
	default:
		logger.Log.Errorw("unexpected attachment error", "err", err)
		apierrors.InternalError(c)
	}
}
