package inbound

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

// UpdateUserRequest carries optional fields; nil means unchanged.
type UpdateUserRequest struct {
	Fullname *string `json:"fullname,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateUserRequest) IsEmpty() bool {
	return r.Fullname == nil && r.Email == nil && r.Role == nil && r.Password == nil
}

type PaginationInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"pages"`
}

type ListUsersResponse struct {
	Users      []*entity.User `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
	Query      string         `json:"query,omitempty"`
}

type UserStats struct {
	TotalUsers   int            `json:"total_users"`
	AdminUsers   int            `json:"admin_users"`
	RegularUsers int            `json:"regular_users"`
	Roles        map[string]int `json:"roles"`
}

type CreateAdminRequest struct {
	Fullname string
	Email    string
	Password string
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// UserManagementUseCase covers the user endpoints. actor is the identity of
// the authenticated caller and drives the self-or-admin checks.
type UserManagementUseCase interface {
	ListUsers(ctx context.Context, page, perPage int) (*ListUsersResponse, error)
	SearchUsers(ctx context.Context, query string, page, perPage int) (*ListUsersResponse, error)
	UserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUser(ctx context.Context, actor entity.Identity, id int64) (*entity.User, error)
	UpdateUser(ctx context.Context, actor entity.Identity, id int64, req UpdateUserRequest) (*entity.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UsersByRole(ctx context.Context, role string) ([]*entity.User, error)
	Stats(ctx context.Context) (*UserStats, error)
	CreateAdmin(ctx context.Context, req CreateAdminRequest) (*entity.User, error)
}
