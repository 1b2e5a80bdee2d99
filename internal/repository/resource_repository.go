package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskledger/internal/model"
)

// ResourceRepository defines inventory persistence operations. Quantities are
// only changed through single conditional statements.
type ResourceRepository interface {
	WithTx(tx *gorm.DB) ResourceRepository
	Grant(ctx context.Context, userID uuid.UUID, key string, qty int64) error
	Consume(ctx context.Context, userID uuid.UUID, key string, qty int64) (bool, error)
	Quantity(ctx context.Context, userID uuid.UUID, key string) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Resource, error)
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) WithTx(tx *gorm.DB) ResourceRepository {
	return &resourceRepository{db: tx}
}

// Grant inserts the row or adds qty to the existing quantity.
func (r *resourceRepository) Grant(ctx context.Context, userID uuid.UUID, key string, qty int64) error {
	res := &model.Resource{UserID: userID, Key: key, Quantity: qty}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "resource_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("resources.quantity + ?", qty),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(res).Error
}

// Consume decrements the quantity only when enough is held. It reports false
// and changes nothing otherwise.
func (r *resourceRepository) Consume(ctx context.Context, userID uuid.UUID, key string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Resource{}).
		Where("user_id = ? AND resource_key = ? AND quantity >= ?", userID, key, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Quantity returns the held quantity; zero when the resource was never granted.
func (r *resourceRepository) Quantity(ctx context.Context, userID uuid.UUID, key string) (int64, error) {
	var res model.Resource
	err := r.db.WithContext(ctx).Where("user_id = ? AND resource_key = ?", userID, key).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return res.Quantity, nil
}

func (r *resourceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Resource, error) {
	var resources []model.Resource
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("resource_key").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}
