package dto

import (
	"time"

	"github.com/facilitas/chamado-service/internal/domain"
)

// RegisterRequest creates a CLIENT account.
type RegisterRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	SenhaAtual string `json:"senha_atual"`
	NovaSenha  string `json:"nova_senha"`
}

// CreateUserRequest provisions an account with an explicit role/sector.
type CreateUserRequest struct {
	Nome    string  `json:"nome"`
	Email   string  `json:"email"`
	Senha   string  `json:"senha"`
	Role    string  `json:"role"`
	SetorID *string `json:"setor_id,omitempty"`
}

// UserResponse projection.
type UserResponse struct {
	ID       string      `json:"id"`
	Nome     string      `json:"nome"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	SetorID  *string     `json:"setor_id,omitempty"`
	Ativo    bool        `json:"ativo"`
	CriadoEm time.Time   `json:"criado_em"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Nome:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
		SetorID:  user.SectorID,
		Ativo:    user.Active,
		CriadoEm: user.CreatedAt,
	}
}

// NewUserListResponse maps a user slice.
func NewUserListResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// AuthResponse wraps a login or registration result.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Usuario   UserResponse `json:"usuario"`
}
