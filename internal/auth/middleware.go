package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/repository"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller with its resolved
// general-sector flag.
type Principal struct {
	User            *domain.User
	InGeneralSector bool
}

// Actor converts the principal into the authz evaluator input.
func (p *Principal) Actor() authz.Actor {
	return authz.Actor{
		UserID:          p.User.ID,
		Role:            p.User.Role,
		SectorID:        p.User.SectorID,
		InGeneralSector: p.InGeneralSector,
	}
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	sectors repository.SectorRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, sectors repository.SectorRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, sectors: sectors}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("user inactive")
	}

	principal := &Principal{User: user}
	if user.HasSector() {
		sector, err := m.sectors.GetByID(c.Context(), *user.SectorID)
		if err != nil && err != pgx.ErrNoRows {
			return apperrors.MapError(err)
		}
		principal.InGeneralSector = sector.IsGeneral()
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
