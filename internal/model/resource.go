package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resource is a countable holding. Quantity never drops below zero.
type Resource struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_resource_user_key,priority:1"`
	Key       string    `json:"key" gorm:"column:resource_key;size:100;not null;uniqueIndex:idx_resource_user_key,priority:2"`
	Quantity  int64     `json:"quantity" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
