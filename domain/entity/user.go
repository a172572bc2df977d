package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID        int64     `json:"id"`
	Fullname  string    `json:"fullname"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUser(fullname, email, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	if !role.IsValid() {
		role = RoleUser
	}
	return &User{
		Fullname:  strings.TrimSpace(fullname),
		Email:     NormalizeEmail(email),
		Password:  passwordHash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity returns the subset of the user that is embedded in tokens.
func (u *User) Identity() Identity {
	return Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}
}

func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// NormalizeEmail lower-cases and trims an address; emails are unique in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
