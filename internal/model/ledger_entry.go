package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryType tags a ledger movement.
type EntryType string

const (
	EntryTypeEarn   EntryType = "earn"
	EntryTypeSpend  EntryType = "spend"
	EntryTypeReward EntryType = "reward"
)

// LedgerEntry is an immutable currency movement. Positive amounts are credits.
// Rows are only ever inserted.
type LedgerEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index:idx_ledger_user_created,priority:1"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Type      EntryType `json:"type" gorm:"size:16;not null"`
	Source    string    `json:"source" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_ledger_user_created,priority:2"`
}

// BeforeCreate sets a time-ordered UUID, so ids break created_at ties in
// insertion order.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.Must(uuid.NewV7())
	}
	return nil
}
