package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

// CreateAttributeInput describes a new gauge. MaxValue defaults to 100.
type CreateAttributeInput struct {
	Name        string
	MaxValue    *int64
	Description string
	Icon        string
}

// UpdateAttributeInput carries optional metadata changes.
type UpdateAttributeInput struct {
	Name        *string
	MaxValue    *int64
	Description *string
	Icon        *string
}

func (in UpdateAttributeInput) empty() bool {
	return in.Name == nil && in.MaxValue == nil && in.Description == nil && in.Icon == nil
}

// AttributeService manages bounded skill gauges. Values are clamped, never rejected.
type AttributeService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateAttributeInput) (*model.Attribute, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Attribute, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateAttributeInput) (*model.Attribute, error)
	Increase(ctx context.Context, userID, id uuid.UUID, delta int64) (int64, error)
	SetValue(ctx context.Context, userID, id uuid.UUID, value int64) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type attributeService struct {
	repos *repository.Repositories
}

// NewAttributeService creates a new attribute service.
func NewAttributeService(repos *repository.Repositories) AttributeService {
	return &attributeService{repos: repos}
}

func (s *attributeService) Create(ctx context.Context, userID uuid.UUID, in CreateAttributeInput) (*model.Attribute, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("attribute name is empty: %w", apperrors.ErrInvalidInput)
	}
	maxValue := model.DefaultAttributeMax
	if in.MaxValue != nil {
		maxValue = *in.MaxValue
	}
	if maxValue <= 0 {
		return nil, fmt.Errorf("max value must be positive: %w", apperrors.ErrInvalidInput)
	}

	attr := &model.Attribute{
		UserID:      userID,
		Name:        name,
		MaxValue:    maxValue,
		Description: in.Description,
		Icon:        in.Icon,
	}
	if err := s.repos.Attributes.Create(ctx, attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (s *attributeService) List(ctx context.Context, userID uuid.UUID) ([]model.Attribute, error) {
	return s.repos.Attributes.ListByUser(ctx, userID)
}

func (s *attributeService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Attribute, error) {
	return s.repos.Attributes.FindByID(ctx, userID, id)
}

// Update edits metadata. Lowering the maximum clamps the current value in the same write.
func (s *attributeService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateAttributeInput) (*model.Attribute, error) {
	if in.empty() {
		return nil, apperrors.ErrEmptyUpdate
	}
	if in.MaxValue != nil && *in.MaxValue <= 0 {
		return nil, fmt.Errorf("max value must be positive: %w", apperrors.ErrInvalidInput)
	}

	var updated *model.Attribute
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		attr, err := tx.Attributes.FindByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("attribute name is empty: %w", apperrors.ErrInvalidInput)
			}
			attr.Name = name
		}
		if in.Description != nil {
			attr.Description = *in.Description
		}
		if in.Icon != nil {
			attr.Icon = *in.Icon
		}
		if in.MaxValue != nil {
			attr.MaxValue = *in.MaxValue
			attr.Value = attr.Clamp(attr.Value)
		}
		if err := tx.Attributes.Save(ctx, attr); err != nil {
			return err
		}
		updated = attr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Increase adds delta and clamps at the maximum. Decreases go through SetValue.
func (s *attributeService) Increase(ctx context.Context, userID, id uuid.UUID, delta int64) (int64, error) {
	if delta < 0 {
		return 0, apperrors.ErrInvalidAmount
	}
	var value int64
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		attr, err := increaseAttribute(ctx, tx, userID, id, delta)
		if err != nil {
			return err
		}
		value = attr.Value
		return nil
	})
	return value, err
}

// SetValue stores value clamped to [0, max] and returns what was stored.
func (s *attributeService) SetValue(ctx context.Context, userID, id uuid.UUID, value int64) (int64, error) {
	var stored int64
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		attr, err := tx.Attributes.FindByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		stored = attr.Clamp(value)
		return tx.Attributes.UpdateValue(ctx, userID, id, stored)
	})
	return stored, err
}

func (s *attributeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repos.Attributes.Delete(ctx, userID, id)
}

// increaseAttribute must run inside a transaction so the clamp uses the
// locked, current value.
func increaseAttribute(ctx context.Context, tx *repository.Repositories, userID, id uuid.UUID, delta int64) (*model.Attribute, error) {
	attr, err := tx.Attributes.FindByIDForUpdate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	attr.Value = attr.Add(delta)
	if err := tx.Attributes.UpdateValue(ctx, userID, id, attr.Value); err != nil {
		return nil, err
	}
	return attr, nil
}
