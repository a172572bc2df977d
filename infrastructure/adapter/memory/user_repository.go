package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
)

// UserRepository keeps users in process memory. It backs the server when no
// DATABASE_URL is configured and is safe for concurrent use.
type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*entity.User
	byEmail map[string]int64
}

var _ outbound.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]*entity.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	return clone(user), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, outbound.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := entity.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return outbound.ErrUserAlreadyExists
	}

	r.nextID++
	user.ID = r.nextID
	user.Email = email

	r.byID[user.ID] = clone(user)
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return outbound.ErrUserNotFound
	}

	email := entity.NormalizeEmail(user.Email)
	if owner, taken := r.byEmail[email]; taken && owner != user.ID {
		return outbound.ErrUserAlreadyExists
	}

	delete(r.byEmail, current.Email)
	stored := clone(user)
	stored.Email = email
	r.byID[user.ID] = stored
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return outbound.ErrUserNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, id)
	return nil
}

func (r *UserRepository) FindAll(_ context.Context, offset, limit int) ([]*entity.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sorted(func(*entity.User) bool { return true })
	return page(all, offset, limit), len(all), nil
}

func (r *UserRepository) Search(_ context.Context, query string, offset, limit int) ([]*entity.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	matches := r.sorted(func(u *entity.User) bool {
		return strings.Contains(strings.ToLower(u.Fullname), needle) || strings.Contains(u.Email, needle)
	})
	return page(matches, offset, limit), len(matches), nil
}

func (r *UserRepository) FindByRole(_ context.Context, role entity.Role) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(u *entity.User) bool { return u.Role == role }), nil
}

func (r *UserRepository) CountByRole(_ context.Context, role entity.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, u := range r.byID {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// sorted returns copies of the matching users ordered by id. Callers hold
// the read lock.
func (r *UserRepository) sorted(match func(*entity.User) bool) []*entity.User {
	users := make([]*entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		if match(u) {
			users = append(users, clone(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func page(users []*entity.User, offset, limit int) []*entity.User {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(users) {
		return []*entity.User{}
	}
	end := len(users)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return users[offset:end]
}

func clone(u *entity.User) *entity.User {
	cp := *u
	return &cp
}
