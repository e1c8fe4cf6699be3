package models

import (
	"time"

	"hearth/internal/uuid"

	"gorm.io/gorm"
)

// Base holds the columns shared by every table: a UUIDv7 primary key,
// timestamps, and a soft-delete marker.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a UUIDv7 unless the caller supplied an ID.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
