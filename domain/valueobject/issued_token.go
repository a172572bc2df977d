package valueobject

import "time"

const TokenTypeBearer = "Bearer"

// IssuedToken is what a client receives after signup, login or refresh.
type IssuedToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewIssuedToken(token string, expiresAt time.Time) IssuedToken {
	return IssuedToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
	}
}
