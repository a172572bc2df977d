// Package account holds the user checks shared by the auth and user
// management use cases.
package account

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
)

// RequireFields reports the first blank field in order as "<field> is required".
func RequireFields(values map[string]string, order ...string) error {
	for _, field := range order {
		if strings.TrimSpace(values[field]) == "" {
			return apperror.BadRequest(field + " is required")
		}
	}
	return nil
}

func ValidateEmail(email string) error {
	if err := valueobject.ValidateEmail(entity.NormalizeEmail(email)); err != nil {
		return apperror.BadRequest("Invalid email format")
	}
	return nil
}

func ValidatePassword(password string) error {
	if err := valueobject.ValidatePassword(password); err != nil {
		return apperror.BadRequest("Password must be at least " + strconv.Itoa(valueobject.MinPasswordLength) + " characters")
	}
	return nil
}

func Find(ctx context.Context, repo outbound.UserRepository, id int64) (*entity.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// Create hashes the password and stores a new user with role. Email
// collisions become ErrEmailInUse.
func Create(ctx context.Context, repo outbound.UserRepository, passwords outbound.PasswordService, fullname, email, password string, role entity.Role) (*entity.User, error) {
	if _, err := repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.ErrEmailInUse
	} else if !errors.Is(err, outbound.ErrUserNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := entity.NewUser(fullname, email, hash, role)
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserAlreadyExists) {
			return nil, apperror.ErrEmailInUse
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
