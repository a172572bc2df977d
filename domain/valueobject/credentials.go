package valueobject

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrMissingPassword  = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const MinPasswordLength = 8

type Credentials struct {
	email    string
	password string
}

// NewCredentials validates a login attempt. The email is normalized; the
// password only has to be present since its strength was checked at signup.
func NewCredentials(email, password string) (*Credentials, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(normalized); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	return &Credentials{
		email:    normalized,
		password: password,
	}, nil
}

func (c *Credentials) Email() string {
	return c.email
}

func (c *Credentials) Password() string {
	return c.password
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
