package user_management

import (
	"context"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

type ListUsersUseCase struct {
	userRepo outbound.UserRepository
}

func NewListUsersUseCase(userRepo outbound.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{
		userRepo: userRepo,
	}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context, page, perPage int) (*inbound.ListUsersResponse, error) {
	page, perPage = normalizePage(page, perPage)

	users, total, err := uc.userRepo.FindAll(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &inbound.ListUsersResponse{
		Users:      users,
		Pagination: pagination(page, perPage, total),
	}, nil
}

// Search matches query against fullname and email.
func (uc *ListUsersUseCase) Search(ctx context.Context, query string, page, perPage int) (*inbound.ListUsersResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest("Search query is required")
	}
	page, perPage = normalizePage(page, perPage)

	users, total, err := uc.userRepo.Search(ctx, query, (page-1)*perPage, perPage)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &inbound.ListUsersResponse{
		Users:      users,
		Pagination: pagination(page, perPage, total),
		Query:      query,
	}, nil
}

// ByRole lists users holding role. Unknown roles simply match nobody.
func (uc *ListUsersUseCase) ByRole(ctx context.Context, role string) ([]*entity.User, error) {
	users, err := uc.userRepo.FindByRole(ctx, entity.Role(role))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = inbound.DefaultPerPage
	}
	if perPage > inbound.MaxPerPage {
		perPage = inbound.MaxPerPage
	}
	return page, perPage
}

func pagination(page, perPage, total int) inbound.PaginationInfo {
	return inbound.PaginationInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}
}
