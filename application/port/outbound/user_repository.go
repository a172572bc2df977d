package outbound

import (
	"context"
	"errors"

	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository stores users. FindByID and FindByEmail return
// ErrUserNotFound when nothing matches; Create and Update return
// ErrUserAlreadyExists on an email collision. FindAll and Search return the
// requested page together with the total number of matches.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context, offset, limit int) ([]*entity.User, int, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*entity.User, int, error)
	FindByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	CountByRole(ctx context.Context, role entity.Role) (int, error)
}
