package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase records a shop order paid from the ledger.
type Purchase struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	ItemID     string    `json:"item_id" gorm:"size:64;not null"`
	ItemName   string    `json:"item_name" gorm:"size:255"`
	Quantity   int64     `json:"quantity" gorm:"not null"`
	UnitPrice  int64     `json:"unit_price" gorm:"not null"`
	TotalPrice int64     `json:"total_price" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// BeforeCreate sets a time-ordered UUID, so ids break created_at ties in
// insertion order.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.Must(uuid.NewV7())
	}
	return nil
}
