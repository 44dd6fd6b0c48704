package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/config"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/repository"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

const minPasswordLen = 8

// AuthService coordinates registration, login and password changes.
type AuthService struct {
	users      repository.UserRepository
	sectors    repository.SectorRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, sectors repository.SectorRepository) *AuthService {
	return &AuthService{
		users:      users,
		sectors:    sectors,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput describes a self-service registration. Role and sector are
// only honored when set by an admin through CreateUser; open registration
// always produces a CLIENT.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult carries the authenticated user and its token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a CLIENT account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateCredentials(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issueToken(user)
}

// CreateUserInput describes an admin-provisioned account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	SectorID *string
}

// CreateUser lets an ADMIN provision staff or client accounts with an
// explicit role and sector.
func (s *AuthService) CreateUser(ctx context.Context, principal *auth.Principal, input CreateUserInput) (*domain.User, error) {
	if principal.User.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateCredentials(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.SectorID != nil && *input.SectorID == "" {
		input.SectorID = nil
	}
	if input.SectorID != nil {
		if _, err := s.sectors.GetByID(ctx, *input.SectorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("sector", map[string]any{"sector_id": *input.SectorID})
			}
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.ensureEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		SectorID:     input.SectorID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

// ChangePassword swaps the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, principal *auth.Principal, current, next string) error {
	if len(next) < minPasswordLen {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLen})
	}
	if err := auth.ComparePassword(principal.User.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	principal.User.PasswordHash = hash
	if err := s.users.Update(ctx, principal.User); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the shared token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	return nil
}

func validateCredentials(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.NewValidationError("valid email required", nil)
	}
	if len(password) < minPasswordLen {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLen})
	}
	return nil
}
