package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskCategory groups tasks. Preset categories are seeded by the system and
// cannot be edited or deleted by their owner.
type TaskCategory struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_category_user_name,priority:1"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_category_user_name,priority:2"`
	Description string    `json:"description" gorm:"size:500"`
	Icon        string    `json:"icon" gorm:"size:64"`
	Color       string    `json:"color" gorm:"size:32"`
	IsPreset    bool      `json:"is_preset" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *TaskCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
