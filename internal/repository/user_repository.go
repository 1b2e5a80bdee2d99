package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByHandle(ctx context.Context, handle string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
	SetExperience(ctx context.Context, id uuid.UUID, experience int64, level int) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, apperrors.ErrUserAlreadyExists)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &user, nil
}

// FindByIDForUpdate locks the user row. Per-user ledger writes serialize on it.
func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &user, nil
}

func (r *userRepository) FindByHandle(ctx context.Context, handle string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&user).Error; err != nil {
		return nil, translate(err, nil)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	return r.update(ctx, id, map[string]interface{}{"display_name": displayName})
}

func (r *userRepository) SetExperience(ctx context.Context, id uuid.UUID, experience int64, level int) error {
	return r.update(ctx, id, map[string]interface{}{"experience": experience, "level": level})
}

func (r *userRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{"last_login": at})
}

func (r *userRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
