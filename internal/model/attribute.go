package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAttributeMax is used when an attribute is created without a maximum.
const DefaultAttributeMax int64 = 100

// Attribute is a bounded skill gauge: 0 <= Value <= MaxValue.
type Attribute struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_attribute_user_name,priority:1"`
	Name        string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_attribute_user_name,priority:2"`
	Value       int64     `json:"value" gorm:"not null;default:0"`
	MaxValue    int64     `json:"max_value" gorm:"not null;default:100"`
	Description string    `json:"description" gorm:"size:500"`
	Icon        string    `json:"icon" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Clamp bounds v to [0, MaxValue].
func (a *Attribute) Clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > a.MaxValue {
		return a.MaxValue
	}
	return v
}

// Add returns Value raised by delta and bounded to [0, MaxValue]. A delta
// large enough to pass MaxValue saturates instead of wrapping.
func (a *Attribute) Add(delta int64) int64 {
	if delta >= a.MaxValue-a.Value {
		return a.MaxValue
	}
	return a.Clamp(a.Value + delta)
}
