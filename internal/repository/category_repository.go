package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

// CategoryRepository defines task category persistence operations.
type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	Create(ctx context.Context, category *model.TaskCategory) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.TaskCategory, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includePreset bool) ([]model.TaskCategory, error)
	CountPresets(ctx context.Context, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, category *model.TaskCategory) error
	DeleteCustom(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.TaskCategory) error {
	return translate(r.db.WithContext(ctx).Create(category).Error, apperrors.ErrDuplicateName)
}

func (r *categoryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.TaskCategory, error) {
	var category model.TaskCategory
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).
		First(&category).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &category, nil
}

// ListByUser returns presets first, then the newest categories.
func (r *categoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, includePreset bool) ([]model.TaskCategory, error) {
	var categories []model.TaskCategory
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includePreset {
		q = q.Where("is_preset = ?", false)
	}
	if err := q.Order("is_preset DESC").Order("created_at DESC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) CountPresets(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaskCategory{}).
		Where("user_id = ? AND is_preset = ?", userID, true).
		Count(&count).Error
	return count, err
}

// Save writes the editable columns of a user-created category.
func (r *categoryRepository) Save(ctx context.Context, category *model.TaskCategory) error {
	res := r.db.WithContext(ctx).Model(category).
		Where("user_id = ? AND is_preset = ?", category.UserID, false).
		Select("name", "description", "icon", "color").
		Updates(category)
	if res.Error != nil {
		return translate(res.Error, apperrors.ErrDuplicateName)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCustom removes a non-preset category and reports whether a row was deleted.
func (r *categoryRepository) DeleteCustom(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_preset = ?", id, userID, false).
		Delete(&model.TaskCategory{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
