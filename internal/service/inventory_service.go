package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "taskledger/internal/errors"
	"taskledger/internal/repository"
)

// InventoryService manages countable resources.
type InventoryService interface {
	Grant(ctx context.Context, userID uuid.UUID, key string, qty int64) error
	Consume(ctx context.Context, userID uuid.UUID, key string, qty int64) error
	Quantity(ctx context.Context, userID uuid.UUID, key string) (int64, error)
	List(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

type inventoryService struct {
	repos *repository.Repositories
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repos *repository.Repositories) InventoryService {
	return &inventoryService{repos: repos}
}

func (s *inventoryService) Grant(ctx context.Context, userID uuid.UUID, key string, qty int64) error {
	key, err := validateResource(key, qty)
	if err != nil {
		return err
	}
	if _, err := s.repos.Users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repos.Resources.Grant(ctx, userID, key, qty); err != nil {
		return fmt.Errorf("grant resource %q: %w", key, err)
	}
	return nil
}

// Consume fails with ErrInsufficientQuantity and changes nothing when less
// than qty is held.
func (s *inventoryService) Consume(ctx context.Context, userID uuid.UUID, key string, qty int64) error {
	key, err := validateResource(key, qty)
	if err != nil {
		return err
	}
	ok, err := s.repos.Resources.Consume(ctx, userID, key, qty)
	if err != nil {
		return fmt.Errorf("consume resource %q: %w", key, err)
	}
	if !ok {
		return apperrors.ErrInsufficientQuantity
	}
	return nil
}

func (s *inventoryService) Quantity(ctx context.Context, userID uuid.UUID, key string) (int64, error) {
	return s.repos.Resources.Quantity(ctx, userID, key)
}

func (s *inventoryService) List(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	resources, err := s.repos.Resources.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(resources))
	for _, r := range resources {
		out[r.Key] = r.Quantity
	}
	return out, nil
}

func validateResource(key string, qty int64) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("resource key is empty: %w", apperrors.ErrInvalidInput)
	}
	if qty <= 0 {
		return "", apperrors.ErrInvalidAmount
	}
	return key, nil
}
