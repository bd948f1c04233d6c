package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/config"
	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	store      repository.Store
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// RegisterInput creates an organization together with its first admin.
type RegisterInput struct {
	OrganizationName string
	Name             string
	Email            string
	Password         string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User         *domain.User
	Organization *domain.Organization
	Token        string
	ExpiresAt    time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps Dependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     deps.logger(),
		now:        deps.clock(),
	}
}

// TokenManager exposes the token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates an organization and its admin in one transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	orgName, err := requireText("organization_name", input.OrganizationName)
	if err != nil {
		return nil, err
	}
	name, err := requireText("name", input.Name)
	if err != nil {
		return nil, err
	}
	email, err := requireText("email", input.Email)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
		}
		return nil, err
	}

	org := &domain.Organization{Name: orgName}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().GetByEmail(ctx, email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"email": email})
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.Organizations().Create(ctx, org); err != nil {
			return err
		}
		user.OrganizationID = org.ID
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		org.CreatedBy = &user.ID
		return tx.Organizations().Update(ctx, org)
	})
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, "")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("organization registered", zap.String("organization_id", org.ID), zap.String("admin_id", user.ID))
	return &AuthResult{User: user, Organization: org, Token: token, ExpiresAt: exp}, nil
}

// Login authenticates a user by email and password and records last_login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := apperrors.NewUnauthorized("invalid credentials")
	user, err := s.store.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, apperrors.NewStorageFailure(err)
	}
	if user.IsDeleted {
		return nil, invalid
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalid
	}

	now := s.now()
	if err := s.store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, user.ID)
	}
	user.LastLogin = &now

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Me returns the caller's own record.
func (s *AuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, p.ID)
	if err != nil {
		return nil, repository.MapError(err, domain.ResourceUser, p.ID)
	}
	return user, nil
}
