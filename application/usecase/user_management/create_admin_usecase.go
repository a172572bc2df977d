package user_management

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/internal/account"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

// CreateAdminUseCase is the only way to obtain an admin account; signup
// always creates regular users.
type CreateAdminUseCase struct {
	userRepo    outbound.UserRepository
	passwordSvc outbound.PasswordService
	logger      logger.Logger
}

func NewCreateAdminUseCase(userRepo outbound.UserRepository, passwordSvc outbound.PasswordService, log logger.Logger) *CreateAdminUseCase {
	return &CreateAdminUseCase{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		logger:      log,
	}
}

func (uc *CreateAdminUseCase) Execute(ctx context.Context, req inbound.CreateAdminRequest) (*entity.User, error) {
	if err := account.RequireFields(map[string]string{
		"fullname": req.Fullname,
		"email":    req.Email,
		"password": req.Password,
	}, "fullname", "email", "password"); err != nil {
		return nil, err
	}
	if err := account.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	user, err := account.Create(ctx, uc.userRepo, uc.passwordSvc, req.Fullname, req.Email, req.Password, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	logger.LogSecurityEvent(ctx, uc.logger, "admin_created", "MEDIUM", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return user, nil
}
