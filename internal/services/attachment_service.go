package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskforge/internal/dto"
	"taskforge/internal/logger"
	"taskforge/internal/models"
	"taskforge/internal/repository"
	"taskforge/internal/storage"
)

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentForbidden = errors.New("attachment does not belong to user")
)

// AttachmentService handles attachment metadata, task links and the blob
// store. Unlike the task engine it looks attachments up by raw id, so an
// ownership mismatch surfaces as ErrAttachmentForbidden rather than not-found.
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
	userRepo       repository.UserRepository
	blobs          storage.BlobStorage
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(attachmentRepo repository.AttachmentRepository, taskRepo repository.TaskRepository, userRepo repository.UserRepository, blobs storage.BlobStorage) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		blobs:          blobs,
	}
}

// UploadInput carries an uploaded file
type UploadInput struct {
	Data         []byte
	OriginalName string
	ContentType  string
	UserID       string
}

// UploadUnlinked stores the blob and persists the attachment metadata without
// requiring any task to exist. A blob-store failure aborts before the
// metadata row is written, so there is never a row without a blob.
func (s *AttachmentService) UploadUnlinked(ctx context.Context, input UploadInput) (*dto.AttachmentInfo, error) {
	attachment, err := s.storeBlob(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Create(attachment); err != nil {
		return nil, fmt.Errorf("failed to persist attachment: %w", err)
	}

	info := dto.ToAttachmentInfo(*attachment)
	return &info, nil
}

// UploadAndAttach stores the blob, persists the metadata and links it to the
// task. The task must pass the guarded lookup before anything is stored, and
// the metadata row and link row commit together: a failure on either rolls
// both back, leaving at worst an unreferenced blob.
func (s *AttachmentService) UploadAndAttach(ctx context.Context, taskID string, input UploadInput) (*dto.AttachmentInfo, error) {
	task, err := s.taskRepo.FindByIDAndUser(taskID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	attachment, err := s.storeBlob(ctx, input)
	if err != nil {
		return nil, err
	}

	err = s.attachmentRepo.Transaction(func(repo repository.AttachmentRepository) error {
		if err := repo.Create(attachment); err != nil {
			return fmt.Errorf("failed to persist attachment: %w", err)
		}
		if err := repo.CreateLink(&models.TaskAttachment{
			TaskID:       task.ID,
			AttachmentID: attachment.ID,
		}); err != nil {
			return fmt.Errorf("failed to link attachment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	info := dto.ToAttachmentInfo(*attachment)
	return &info, nil
}

// ListByTask lists attachments linked to a task. Attachments owned by anyone
// other than the caller are filtered out at read time even though the write
// path never creates such links.
func (s *AttachmentService) ListByTask(taskID, userID string) ([]dto.AttachmentInfo, error) {
	links, err := s.attachmentRepo.FindLinksByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	infos := make([]dto.AttachmentInfo, 0, len(links))
	for _, link := range links {
		if link.Attachment.UserID != userID {
			continue
		}
		infos = append(infos, dto.ToAttachmentInfo(link.Attachment))
	}
	return infos, nil
}

// Attach links an existing attachment to a task. Idempotent: if the link row
// already exists the current attachment is returned unchanged.
func (s *AttachmentService) Attach(attachmentID, taskID, userID string) (*dto.AttachmentInfo, error) {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByIDAndUser(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.attachmentRepo.FindLink(task.ID, attachment.ID); err == nil {
		info := dto.ToAttachmentInfo(*attachment)
		return &info, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}

	if err := s.attachmentRepo.CreateLink(&models.TaskAttachment{
		TaskID:       task.ID,
		AttachmentID: attachment.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to link attachment: %w", err)
	}

	info := dto.ToAttachmentInfo(*attachment)
	return &info, nil
}

// Detach removes the attachment from every task it is linked to. This is a
// single fan-out operation, not per-task; the task-side unlink covers the
// narrower case.
func (s *AttachmentService) Detach(attachmentID, userID string) (*dto.AttachmentInfo, error) {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.DeleteLinksByAttachment(attachment.ID); err != nil {
		return nil, fmt.Errorf("failed to detach attachment: %w", err)
	}

	info := dto.ToAttachmentInfo(*attachment)
	return &info, nil
}

// Delete removes the attachment. The link rows and the metadata row go in a
// single transaction, so a failure on either leaves the attachment fully
// intact. The blob is deleted best-effort after commit; a storage outage
// must not block metadata deletion.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, userID string) error {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return err
	}

	err = s.attachmentRepo.Transaction(func(repo repository.AttachmentRepository) error {
		if err := repo.DeleteLinksByAttachment(attachment.ID); err != nil {
			return fmt.Errorf("failed to remove attachment links: %w", err)
		}
		if err := repo.Delete(attachment.ID); err != nil {
			return fmt.Errorf("failed to delete attachment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, attachment.StorageKey); err != nil {
		logger.Log.Warnw("failed to delete underlying blob",
			"attachment_id", attachment.ID,
			"storage_key", attachment.StorageKey,
			"err", err)
	}
	return nil
}

// LoadBytes returns the raw blob for an attachment the caller owns
func (s *AttachmentService) LoadBytes(ctx context.Context, attachmentID, userID string) ([]byte, *dto.AttachmentInfo, error) {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Load(ctx, attachment.StorageKey)
	if err != nil {
		logger.Log.Errorw("failed to load blob",
			"attachment_id", attachment.ID,
			"storage_key", attachment.StorageKey,
			"err", err)
		return nil, nil, fmt.Errorf("failed to load blob: %w", err)
	}

	info := dto.ToAttachmentInfo(*attachment)
	return data, &info, nil
}

// GetInfo returns attachment metadata for the owner
func (s *AttachmentService) GetInfo(attachmentID, userID string) (*dto.AttachmentInfo, error) {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return nil, err
	}

	info := dto.ToAttachmentInfo(*attachment)
	return &info, nil
}

// findOwned looks an attachment up by raw id and checks ownership explicitly
func (s *AttachmentService) findOwned(attachmentID, userID string) (*models.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}
	if attachment.UserID != userID {
		return nil, ErrAttachmentForbidden
	}
	return attachment, nil
}

// storeBlob verifies the uploader, writes the blob and builds the metadata
// record without persisting it. If the blob write fails nothing is stored; if
// a later metadata write fails the blob is an unreferenced leak, which is
// tolerated.
func (s *AttachmentService) storeBlob(ctx context.Context, input UploadInput) (*models.Attachment, error) {
	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to verify uploader: %w", err)
	}

	stored, err := s.blobs.Store(ctx, input.Data, input.OriginalName, input.ContentType)
	if err != nil {
		logger.Log.Errorw("blob store failed", "file_name", input.OriginalName, "err", err)
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	fileName := input.OriginalName
	if fileName == "" {
		fileName = "file"
	}

	attachment := &models.Attachment{
		UserID:         input.UserID,
		FileName:       fileName,
		ContentType:    stored.ContentType,
		SizeBytes:      stored.Size,
		ChecksumSHA256: stored.ChecksumSHA256,
		StorageKey:     stored.Key,
	}
	return attachment, nil
}
