package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskledger/internal/model"
)

// ExperienceRepository stores the append-only experience log.
type ExperienceRepository interface {
	WithTx(tx *gorm.DB) ExperienceRepository
	Append(ctx context.Context, record *model.ExperienceRecord) error
	Total(ctx context.Context, userID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ExperienceRecord, error)
}

type experienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository creates a new experience repository.
func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) WithTx(tx *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: tx}
}

func (r *experienceRepository) Append(ctx context.Context, record *model.ExperienceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *experienceRepository) Total(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.ExperienceRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}

func (r *experienceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.ExperienceRecord, error) {
	var records []model.ExperienceRecord
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
