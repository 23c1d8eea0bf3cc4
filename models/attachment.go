package models

import (
	"time"
)

// BAPPAttachment is the metadata row for a stored signature image or supporting document.
// FilePath is the canonical absolute path of the file on disk.
type BAPPAttachment struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	BAPPID       uint   `gorm:"column:bapp_id;index;not null"`
	FileType     string `gorm:"size:32;not null;index"` // signature | document
	FilePath     string `gorm:"size:1024;not null"`
	FileName     string `gorm:"size:255;not null"`
	OriginalName string `gorm:"size:255"`
	ContentType  string `gorm:"size:128"`
	Size         int64
	UploadedBy   uint `gorm:"index;not null"`
	Uploader     User `gorm:"foreignKey:UploadedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (BAPPAttachment) TableName() string { return "bapp_attachments" }
