package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/salim0986/okr-production-sub000/internal/domain"
	"github.com/salim0986/okr-production-sub000/internal/repository"
	apperrors "github.com/salim0986/okr-production-sub000/pkg/util"
)

const (
	principalKey = "auth_principal"
	userKey      = "auth_user"
)

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	teams  repository.TeamRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, teams repository.TeamRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, teams: teams}
}

// Handle enforces authentication for protected routes. The principal is
// built from the stored user, not from token claims, so role changes and
// deletions take effect immediately.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.IsDeleted {
		return apperrors.NewUnauthorized("user deactivated")
	}
	if !user.Role.Valid() {
		return apperrors.NewUnauthorized("unknown role")
	}
	if user.TeamID != nil {
		team, err := m.teams.GetByID(c.UserContext(), *user.TeamID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.MapError(err)
		}
		if err != nil || team.OrganizationID != user.OrganizationID {
			return apperrors.NewUnauthorized("inconsistent team membership")
		}
	}

	principal := user.Principal()
	c.Locals(principalKey, &principal)
	c.Locals(userKey, user)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}

// UserFromContext retrieves the authenticated user record.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(userKey).(*domain.User)
	return user, ok && user != nil
}

// MustPrincipal returns the principal or an Unauthorized error.
func MustPrincipal(c *fiber.Ctx) (domain.Principal, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return domain.Principal{}, apperrors.NewUnauthorized("authentication required")
	}
	return *principal, nil
}
