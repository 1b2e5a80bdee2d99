package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskledger/internal/model"
)

// PurchaseRepository records shop orders.
type PurchaseRepository interface {
	WithTx(tx *gorm.DB) PurchaseRepository
	Create(ctx context.Context, purchase *model.Purchase) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) WithTx(tx *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: tx}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Purchase, error) {
	var purchases []model.Purchase
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
