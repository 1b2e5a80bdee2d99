package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExperiencePerLevel is the amount of experience needed to advance one level.
const ExperiencePerLevel = 100

// User is the owner of every other entity in the ledger.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Handle       string     `json:"handle" gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	DisplayName  string     `json:"display_name" gorm:"size:255"`
	Level        int        `json:"level" gorm:"not null;default:1"`
	Experience   int64      `json:"experience" gorm:"not null;default:0"`
	Role         string     `json:"role" gorm:"size:32;default:'user'"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level == 0 {
		u.Level = LevelFor(u.Experience)
	}
	return nil
}

// LevelFor derives the level from lifetime experience.
func LevelFor(experience int64) int {
	if experience < 0 {
		return 1
	}
	return 1 + int(experience/ExperiencePerLevel)
}
