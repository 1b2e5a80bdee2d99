package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskledger/internal/cache"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// RegisterInput describes a new user.
type RegisterInput struct {
	Handle      string
	Password    string
	DisplayName string
	Role        string
}

// Profile is a user together with the figures derived from the ledgers.
type Profile struct {
	User             model.User `json:"user"`
	Balance          int64      `json:"balance"`
	NextLevelAt      int64      `json:"next_level_at"`
	ExperienceToNext int64      `json:"experience_to_next"`
}

// UserService exposes user operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByHandle(ctx context.Context, handle string) (*model.User, error)
	Profile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, displayName string) (*model.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID) error
	ReconcileExperience(ctx context.Context) (int, error)
}

type userService struct {
	repos *repository.Repositories
	cache *cache.Client
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(repos *repository.Repositories, cache *cache.Client) UserService {
	return &userService{repos: repos, cache: cache}
}

// Register creates the user and seeds the preset categories in one transaction.
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	handle := strings.TrimSpace(in.Handle)
	if len(handle) < 3 || len(handle) > 64 {
		return nil, fmt.Errorf("handle must be 3-64 characters: %w", apperrors.ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", apperrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = "user"
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = handle
	}
	user := &model.User{
		Handle:       handle,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         role,
		Level:        1,
	}

	err = s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		_, err := seedPresets(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repos.Users.FindByID(ctx, id)
}

func (s *userService) GetByHandle(ctx context.Context, handle string) (*model.User, error) {
	return s.repos.Users.FindByHandle(ctx, handle)
}

func (s *userService) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var cached Profile
	if s.cache.GetJSON(ctx, cache.ProfileKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	balance, err := s.repos.Ledger.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	nextLevelAt := int64(user.Level) * model.ExperiencePerLevel
	profile := &Profile{
		User:             *user,
		Balance:          balance,
		NextLevelAt:      nextLevelAt,
		ExperienceToNext: nextLevelAt - user.Experience,
	}
	s.cache.SetJSON(ctx, cache.ProfileKey(id), profile, profileCacheTTL)
	return profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.ErrEmptyUpdate
	}
	if err := s.repos.Users.UpdateDisplayName(ctx, id, displayName); err != nil {
		return nil, err
	}
	s.cache.InvalidateUser(ctx, id)
	return s.repos.Users.FindByID(ctx, id)
}

func (s *userService) TouchLogin(ctx context.Context, id uuid.UUID) error {
	return s.repos.Users.TouchLogin(ctx, id, time.Now().UTC())
}

// ReconcileExperience recomputes every user's experience counter and level
// from the experience log and returns how many users were corrected.
func (s *userService) ReconcileExperience(ctx context.Context) (int, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	fixed := 0
	for _, u := range users {
		var changed bool
		err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
			user, err := tx.Users.FindByIDForUpdate(ctx, u.ID)
			if err != nil {
				return err
			}
			total, err := tx.Experience.Total(ctx, user.ID)
			if err != nil {
				return err
			}
			level := model.LevelFor(total)
			if total == user.Experience && level == user.Level {
				return nil
			}
			log.WithFields(log.Fields{
				"user_id":  user.ID,
				"stored":   user.Experience,
				"recorded": total,
			}).Warn("experience counter drifted from log, repairing")
			changed = true
			return tx.Users.SetExperience(ctx, user.ID, total, level)
		})
		if err != nil {
			return fixed, fmt.Errorf("reconcile user %s: %w", u.ID, err)
		}
		if changed {
			fixed++
			s.cache.InvalidateUser(ctx, u.ID)
		}
	}
	return fixed, nil
}

// addExperience appends to the experience log and bumps the counter and
// level. It must run inside a transaction.
func addExperience(ctx context.Context, tx *repository.Repositories, userID uuid.UUID, amount int64, source string) (*model.User, error) {
	user, err := tx.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	record := &model.ExperienceRecord{UserID: userID, Amount: amount, Source: source}
	if err := tx.Experience.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("append experience: %w", err)
	}
	user.Experience += amount
	user.Level = model.LevelFor(user.Experience)
	if err := tx.Users.SetExperience(ctx, userID, user.Experience, user.Level); err != nil {
		return nil, fmt.Errorf("update experience: %w", err)
	}
	return user, nil
}
