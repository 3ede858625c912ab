package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attachment struct {
	ID             string    `gorm:"type:char(36);primarykey" json:"id"`
	UserID         string    `gorm:"type:char(36);not null;index" json:"user_id"`
	FileName       string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType    string    `gorm:"type:varchar(255);not null" json:"content_type"`
	SizeBytes      int64     `gorm:"not null" json:"size_bytes"`
	ChecksumSHA256 string    `gorm:"type:char(64);not null" json:"checksum_sha256"`
	StorageKey     string    `gorm:"type:varchar(512);not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	User  User             `gorm:"foreignKey:UserID" json:"-"`
	Links []TaskAttachment `gorm:"foreignKey:AttachmentID" json:"-"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
