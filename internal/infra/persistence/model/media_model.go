package model

import (
	"time"

	"github.com/google/uuid"
)

// MediaModel mirrors the 'media' table. OwnerID is nullable; ownerless rows
// older than the grace period are swept together with their blobs.
type MediaModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	FileName   string     `gorm:"type:varchar(255);not null"`
	StorageKey string     `gorm:"type:varchar(512);unique;not null"`
	MimeType   string     `gorm:"type:varchar(100);not null"`
	Size       int64      `gorm:"not null"`
	OwnerID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time  `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (MediaModel) TableName() string {
	return "media"
}
