package outbound

import "errors"

var ErrPasswordMismatch = errors.New("password does not match")

// PasswordService hashes passwords. ComparePassword returns
// ErrPasswordMismatch when the password is wrong.
type PasswordService interface {
	HashPassword(password string) (string, error)
	ComparePassword(hashedPassword, password string) error
}
