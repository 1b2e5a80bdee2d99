package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExperienceRecord is one append-only experience grant. The users.experience
// counter always equals the sum of a user's records.
type ExperienceRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Source    string    `json:"source" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate sets a time-ordered UUID, so ids break created_at ties in
// insertion order.
func (r *ExperienceRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.Must(uuid.NewV7())
	}
	return nil
}
