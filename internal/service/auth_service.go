package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-import/internal/auth"
	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/domain"
	"github.com/spec-kit/ticket-import/internal/repository"
	apperrors "github.com/spec-kit/ticket-import/pkg/util/errorutil"
)

// AuthService coordinates account and login flows.
type AuthService struct {
	users      repository.UserRepository
	rights     repository.RightsRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	RightsRepo repository.RightsRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		rights:     deps.RightsRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a user by login and password. The token carries the
// user's entity as the active scope.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("user disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.EntityID, true)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// CreateUser hashes password and stores a new active account.
func (s *AuthService) CreateUser(ctx context.Context, user *domain.User, password string) error {
	if strings.TrimSpace(user.Login) == "" {
		return apperrors.NewValidationError("login is required", nil)
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Active = true
	return s.users.Create(ctx, user)
}

// SetPassword replaces the password of login.
func (s *AuthService) SetPassword(ctx context.Context, login, password string) error {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"login": login})
		}
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// Grant replaces the rights of login on the named right.
func (s *AuthService) Grant(ctx context.Context, login, name string, rights domain.Right) error {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"login": login})
		}
		return err
	}
	return s.rights.Grant(ctx, user.ID, name, rights)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrEmptyPassword) {
		return "", apperrors.NewValidationError("password is required", nil)
	}
	return hash, err
}
