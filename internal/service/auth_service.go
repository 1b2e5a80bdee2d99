package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"taskledger/internal/auth"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
)

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, handle, password string) (accessToken string, user *model.User, err error)
	IssueToken(user *model.User) (string, error)
}

type authService struct {
	users      UserService
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserService, jwtService *auth.JWTService) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
	}
}

// Register creates the user with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.users.Register(ctx, in)
}

// Login verifies the password and returns an access token.
func (s *authService) Login(ctx context.Context, handle, password string) (string, *model.User, error) {
	user, err := s.users.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	accessToken, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	if err := s.users.TouchLogin(ctx, user.ID); err != nil {
		return "", nil, fmt.Errorf("touch login: %w", err)
	}
	return accessToken, user, nil
}

// IssueToken signs an access token whose subject is the user id.
func (s *authService) IssueToken(user *model.User) (string, error) {
	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Handle, user.Role)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return token, nil
}
