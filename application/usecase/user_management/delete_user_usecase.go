package user_management

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

type DeleteUserUseCase struct {
	userRepo outbound.UserRepository
	logger   logger.Logger
}

func NewDeleteUserUseCase(userRepo outbound.UserRepository, log logger.Logger) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		userRepo: userRepo,
		logger:   log,
	}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, id int64) error {
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal(err)
	}

	uc.logger.Info(ctx, "User deleted", map[string]interface{}{
		"user_id": id,
	})
	return nil
}
