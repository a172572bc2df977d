package outbound

import (
	"time"

	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
)

// TokenClaims is the verified payload of a bearer token.
type TokenClaims struct {
	UserID    int64       `json:"user_id"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	TokenID   string      `json:"jti"`
	IssuedAt  time.Time   `json:"iat"`
	ExpiresAt time.Time   `json:"exp"`
}

func (c *TokenClaims) Identity() entity.Identity {
	return entity.Identity{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
	}
}

func (c *TokenClaims) IsAdmin() bool {
	return c.Role == entity.RoleAdmin
}

// TokenService issues and checks bearer tokens. A ttl <= 0 selects the
// configured default.
type TokenService interface {
	Issue(identity entity.Identity, ttl time.Duration) (valueobject.IssuedToken, error)
	Verify(token string) (*TokenClaims, error)
	ExtractIdentity(token string) *TokenClaims
	Refresh(token string, ttl time.Duration) (valueobject.IssuedToken, error)
}
