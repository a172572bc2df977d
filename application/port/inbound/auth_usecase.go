package inbound

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
)

type RegisterRequest struct {
	Fullname string `json:"fullname" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  *entity.User
	Token valueobject.IssuedToken
}

type AuthUseCase interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, token string) (valueobject.IssuedToken, error)
	Verify(ctx context.Context, token string) (*outbound.TokenClaims, error)
	Profile(ctx context.Context, userID int64) (*entity.User, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
}
