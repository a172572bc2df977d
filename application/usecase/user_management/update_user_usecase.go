package user_management

import (
	"context"
	"errors"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/internal/account"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

type UpdateUserUseCase struct {
	userRepo    outbound.UserRepository
	passwordSvc outbound.PasswordService
	logger      logger.Logger
}

func NewUpdateUserUseCase(userRepo outbound.UserRepository, passwordSvc outbound.PasswordService, log logger.Logger) *UpdateUserUseCase {
	return &UpdateUserUseCase{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		logger:      log,
	}
}

// Execute applies req to user id. Only the owner or an admin may update a
// user, and only an admin may change a role. An unknown role is ignored.
func (uc *UpdateUserUseCase) Execute(ctx context.Context, actor entity.Identity, id int64, req inbound.UpdateUserRequest) (*entity.User, error) {
	if actor.UserID != id && !actor.IsAdmin() {
		return nil, apperror.AccessDenied("Access denied: You can only update your own profile")
	}
	if req.IsEmpty() {
		return nil, apperror.BadRequest("Data to update is not provided")
	}
	if !actor.IsAdmin() {
		req.Role = nil
	}

	user, err := account.Find(ctx, uc.userRepo, id)
	if err != nil {
		return nil, err
	}

	if req.Fullname != nil {
		fullname := strings.TrimSpace(*req.Fullname)
		if fullname == "" {
			return nil, apperror.BadRequest("fullname cannot be empty")
		}
		user.Fullname = fullname
	}

	if req.Email != nil {
		if err := account.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		email := entity.NormalizeEmail(*req.Email)
		existing, err := uc.userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != id:
			return nil, apperror.ErrEmailInUse
		case err != nil && !errors.Is(err, outbound.ErrUserNotFound):
			return nil, apperror.Internal(err)
		}
		user.Email = email
	}

	if req.Role != nil {
		if role := entity.Role(*req.Role); role.IsValid() {
			user.Role = role
		}
	}

	if req.Password != nil {
		if err := account.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := uc.passwordSvc.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		user.Password = hash
	}

	user.Touch()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, outbound.ErrUserAlreadyExists):
			return nil, apperror.ErrEmailInUse
		case errors.Is(err, outbound.ErrUserNotFound):
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	uc.logger.Info(ctx, "User updated", map[string]interface{}{
		"user_id":  id,
		"actor_id": actor.UserID,
	})
	return user, nil
}
