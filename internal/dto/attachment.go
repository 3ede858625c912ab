package dto

import (
	"time"

	"taskforge/internal/models"
)

// AttachmentInfo represents attachment metadata in API responses. The storage
// key stays internal.
type AttachmentInfo struct {
	ID             string    `json:"id"`
	FileName       string    `json:"file_name"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	ChecksumSHA256 string    `json:"checksum_sha256"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToAttachmentInfo converts an Attachment model to AttachmentInfo
func ToAttachmentInfo(attachment models.Attachment) AttachmentInfo {
	return AttachmentInfo{
		ID:             attachment.ID,
		FileName:       attachment.FileName,
		ContentType:    attachment.ContentType,
		SizeBytes:      attachment.SizeBytes,
		ChecksumSHA256: attachment.ChecksumSHA256,
		CreatedAt:      attachment.CreatedAt,
		UpdatedAt:      attachment.UpdatedAt,
	}
}
