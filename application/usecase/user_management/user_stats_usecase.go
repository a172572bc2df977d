package user_management

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

type UserStatsUseCase struct {
	userRepo outbound.UserRepository
}

func NewUserStatsUseCase(userRepo outbound.UserRepository) *UserStatsUseCase {
	return &UserStatsUseCase{
		userRepo: userRepo,
	}
}

func (uc *UserStatsUseCase) Execute(ctx context.Context) (*inbound.UserStats, error) {
	_, total, err := uc.userRepo.FindAll(ctx, 0, 1)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	admins, err := uc.userRepo.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	regular, err := uc.userRepo.CountByRole(ctx, entity.RoleUser)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &inbound.UserStats{
		TotalUsers:   total,
		AdminUsers:   admins,
		RegularUsers: regular,
		Roles: map[string]int{
			entity.RoleAdmin.String(): admins,
			entity.RoleUser.String():  regular,
		},
	}, nil
}
