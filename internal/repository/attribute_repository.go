package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

// AttributeRepository defines attribute persistence operations. Every lookup
// is scoped by owner.
type AttributeRepository interface {
	WithTx(tx *gorm.DB) AttributeRepository
	Create(ctx context.Context, attr *model.Attribute) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error)
	FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Attribute, error)
	Save(ctx context.Context, attr *model.Attribute) error
	UpdateValue(ctx context.Context, userID, id uuid.UUID, value int64) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type attributeRepository struct {
	db *gorm.DB
}

// NewAttributeRepository creates a new attribute repository.
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) WithTx(tx *gorm.DB) AttributeRepository {
	return &attributeRepository{db: tx}
}

func (r *attributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	return translate(r.db.WithContext(ctx).Create(attr).Error, apperrors.ErrDuplicateName)
}

func (r *attributeRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		First(&attr).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &attr, nil
}

// FindByIDForUpdate reads the attribute with a row-level lock so a clamp is
// computed from the value the write will replace.
func (r *attributeRepository) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).First(&attr).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &attr, nil
}

func (r *attributeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Attribute, error) {
	var attrs []model.Attribute
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&attrs).Error; err != nil {
		return nil, err
	}
	return attrs, nil
}

// Save writes the mutable columns of attr.
func (r *attributeRepository) Save(ctx context.Context, attr *model.Attribute) error {
	res := r.db.WithContext(ctx).Model(attr).
		Where("user_id = ?", attr.UserID).
		Select("name", "value", "max_value", "description", "icon").
		Updates(attr)
	if res.Error != nil {
		return translate(res.Error, apperrors.ErrDuplicateName)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *attributeRepository) UpdateValue(ctx context.Context, userID, id uuid.UUID, value int64) error {
	res := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *attributeRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Attribute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
