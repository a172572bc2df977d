package user_management

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

type UserManagementUseCaseImpl struct {
	listUsersUseCase   *ListUsersUseCase
	getUserUseCase     *GetUserUseCase
	updateUserUseCase  *UpdateUserUseCase
	deleteUserUseCase  *DeleteUserUseCase
	userStatsUseCase   *UserStatsUseCase
	createAdminUseCase *CreateAdminUseCase
}

func NewUserManagementUseCase(
	userRepo outbound.UserRepository,
	passwordSvc outbound.PasswordService,
	log logger.Logger,
) inbound.UserManagementUseCase {
	return &UserManagementUseCaseImpl{
		listUsersUseCase:   NewListUsersUseCase(userRepo),
		getUserUseCase:     NewGetUserUseCase(userRepo),
		updateUserUseCase:  NewUpdateUserUseCase(userRepo, passwordSvc, log),
		deleteUserUseCase:  NewDeleteUserUseCase(userRepo, log),
		userStatsUseCase:   NewUserStatsUseCase(userRepo),
		createAdminUseCase: NewCreateAdminUseCase(userRepo, passwordSvc, log),
	}
}

func (uc *UserManagementUseCaseImpl) ListUsers(ctx context.Context, page, perPage int) (*inbound.ListUsersResponse, error) {
	return uc.listUsersUseCase.Execute(ctx, page, perPage)
}

func (uc *UserManagementUseCaseImpl) SearchUsers(ctx context.Context, query string, page, perPage int) (*inbound.ListUsersResponse, error) {
	return uc.listUsersUseCase.Search(ctx, query, page, perPage)
}

func (uc *UserManagementUseCaseImpl) GetUser(ctx context.Context, actor entity.Identity, id int64) (*entity.User, error) {
	return uc.getUserUseCase.Execute(ctx, actor, id)
}

func (uc *UserManagementUseCaseImpl) UserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return uc.getUserUseCase.ByEmail(ctx, email)
}

func (uc *UserManagementUseCaseImpl) UpdateUser(ctx context.Context, actor entity.Identity, id int64, req inbound.UpdateUserRequest) (*entity.User, error) {
	return uc.updateUserUseCase.Execute(ctx, actor, id, req)
}

func (uc *UserManagementUseCaseImpl) DeleteUser(ctx context.Context, id int64) error {
	return uc.deleteUserUseCase.Execute(ctx, id)
}

func (uc *UserManagementUseCaseImpl) UsersByRole(ctx context.Context, role string) ([]*entity.User, error) {
	return uc.listUsersUseCase.ByRole(ctx, role)
}

func (uc *UserManagementUseCaseImpl) Stats(ctx context.Context) (*inbound.UserStats, error) {
	return uc.userStatsUseCase.Execute(ctx)
}

func (uc *UserManagementUseCaseImpl) CreateAdmin(ctx context.Context, req inbound.CreateAdminRequest) (*entity.User, error) {
	return uc.createAdminUseCase.Execute(ctx, req)
}
