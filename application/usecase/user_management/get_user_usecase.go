package user_management

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/internal/account"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

type GetUserUseCase struct {
	userRepo outbound.UserRepository
}

func NewGetUserUseCase(userRepo outbound.UserRepository) *GetUserUseCase {
	return &GetUserUseCase{
		userRepo: userRepo,
	}
}

// Execute returns user id to its owner or to an admin.
func (uc *GetUserUseCase) Execute(ctx context.Context, actor entity.Identity, id int64) (*entity.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, apperror.AccessDenied("Access denied: You can only view your own profile")
	}
	return account.Find(ctx, uc.userRepo, id)
}

func (uc *GetUserUseCase) ByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
