package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

type presetCategory struct {
	name        string
	description string
	icon        string
}

var presetCategories = []presetCategory{
	{"Python Data Analysis", "Learn data analysis with Python", "🐍"},
	{"English Exam Prep", "Study plan for the English proficiency exam", "📚"},
	{"Vue 3 Framework", "Learn the Vue 3 frontend framework", "💻"},
	{"Fitness Plan", "Build and follow a fitness routine", "🏃"},
	{"Photography Basics", "Learn photography fundamentals", "📷"},
	{"Graduate Math Prep", "Study plan for the graduate entrance math exam", "📐"},
	{"UI Design", "Learn user interface design", "🎨"},
	{"Guitar Basics", "Learn guitar fundamentals and technique", "🎸"},
}

// CategoryInput describes a user-created category.
type CategoryInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

// UpdateCategoryInput carries optional changes.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
}

// CategoryService manages task categories.
type CategoryService interface {
	Create(ctx context.Context, userID uuid.UUID, in CategoryInput) (*model.TaskCategory, error)
	List(ctx context.Context, userID uuid.UUID, includePreset bool) ([]model.TaskCategory, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateCategoryInput) (*model.TaskCategory, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	SeedPresets(ctx context.Context, userID uuid.UUID) (int, error)
}

type categoryService struct {
	repos *repository.Repositories
}

// NewCategoryService creates a new category service.
func NewCategoryService(repos *repository.Repositories) CategoryService {
	return &categoryService{repos: repos}
}

func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, in CategoryInput) (*model.TaskCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is empty: %w", apperrors.ErrInvalidInput)
	}
	category := &model.TaskCategory{
		UserID:      userID,
		Name:        name,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
	}
	if err := s.repos.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, userID uuid.UUID, includePreset bool) ([]model.TaskCategory, error) {
	return s.repos.Categories.ListByUser(ctx, userID, includePreset)
}

func (s *categoryService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateCategoryInput) (*model.TaskCategory, error) {
	if in.Name == nil && in.Description == nil && in.Icon == nil && in.Color == nil {
		return nil, apperrors.ErrEmptyUpdate
	}
	category, err := s.repos.Categories.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if category.IsPreset {
		return nil, apperrors.ErrPresetCategory
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is empty: %w", apperrors.ErrInvalidInput)
		}
		category.Name = name
	}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.Icon != nil {
		category.Icon = *in.Icon
	}
	if in.Color != nil {
		category.Color = *in.Color
	}
	if err := s.repos.Categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a user-created category and detaches its tasks. Presets are
// kept and reported as (false, nil).
func (s *categoryService) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	var deleted bool
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		category, err := tx.Categories.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if category.IsPreset {
			return nil
		}
		if deleted, err = tx.Categories.DeleteCustom(ctx, userID, id); err != nil || !deleted {
			return err
		}
		return tx.Tasks.ClearCategory(ctx, userID, id)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// SeedPresets inserts the preset categories once per user. It returns how
// many were inserted; zero when the user already has presets.
func (s *categoryService) SeedPresets(ctx context.Context, userID uuid.UUID) (int, error) {
	var inserted int
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		var err error
		inserted, err = seedPresets(ctx, tx, userID)
		return err
	})
	return inserted, err
}

// seedPresets must run inside a transaction; the user row lock makes
// concurrent seeding of the same user sequential.
func seedPresets(ctx context.Context, tx *repository.Repositories, userID uuid.UUID) (int, error) {
	if _, err := tx.Users.FindByIDForUpdate(ctx, userID); err != nil {
		return 0, err
	}
	count, err := tx.Categories.CountPresets(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count presets: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for _, p := range presetCategories {
		err := tx.WithTransaction(ctx, func(ctx context.Context, sp *repository.Repositories) error {
			return sp.Categories.Create(ctx, &model.TaskCategory{
				UserID:      userID,
				Name:        p.name,
				Description: p.description,
				Icon:        p.icon,
				IsPreset:    true,
			})
		})
		if errors.Is(err, apperrors.ErrDuplicateName) {
			// the user already owns a category with this name
			log.WithFields(log.Fields{"user_id": userID, "category": p.name}).Debug("preset category name taken, skipping")
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("create preset %q: %w", p.name, err)
		}
		inserted++
	}
	return inserted, nil
}
