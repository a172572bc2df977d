package jwt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/config"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

// tokenClaims is the signed payload. The signature covers every field.
type tokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 bearer tokens. It holds only
// read-only state and is safe for concurrent use.
type JWTService struct {
	hmacSecret []byte
	defaultTTL time.Duration
	now        func() time.Time
	logger     logger.Logger
}

type Option func(*JWTService)

// WithClock replaces the wall clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *JWTService) {
		s.logger = l
	}
}

var _ outbound.TokenService = (*JWTService)(nil)

func NewJWTService(cfg *config.Config, opts ...Option) (*JWTService, error) {
	if cfg == nil || cfg.SecretKey == "" {
		return nil, apperror.ErrConfiguration.WithCause(errors.New("signing secret is not configured"))
	}
	if cfg.JWTAlgorithm != "" && cfg.JWTAlgorithm != jwt.SigningMethodHS256.Alg() {
		return nil, apperror.ErrConfiguration.WithCause(fmt.Errorf("unsupported JWT algorithm: %s", cfg.JWTAlgorithm))
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	service := &JWTService{
		hmacSecret: []byte(cfg.SecretKey),
		defaultTTL: ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

func (s *JWTService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

// Issue signs a fresh token for identity with exp = iat + ttl.
func (s *JWTService) Issue(identity entity.Identity, ttl time.Duration) (valueobject.IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()

	claims := tokenClaims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   identity.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.hmacSecret)
	if err != nil {
		return valueobject.IssuedToken{}, apperror.ErrConfiguration.WithCause(fmt.Errorf("failed to sign token: %w", err))
	}

	return valueobject.NewIssuedToken(tokenString, claims.ExpiresAt.Time.UTC()), nil
}

// Verify checks signature, structure and expiry. A token is expired once
// now >= exp.
func (s *JWTService) Verify(tokenString string) (*outbound.TokenClaims, error) {
	claims, err := s.parse(tokenString, true)
	if err != nil {
		return nil, s.handleValidationError(err)
	}

	result, err := toTokenClaims(claims)
	if err != nil {
		return nil, apperror.ErrInvalidToken.WithCause(err)
	}
	return result, nil
}

// ExtractIdentity is a best-effort Verify that hides the failure reason.
func (s *JWTService) ExtractIdentity(tokenString string) *outbound.TokenClaims {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil
	}
	return claims
}

// Refresh re-issues a token for the identity embedded in tokenString. The
// signature is still checked but expiry is not, so an expired token can be
// extended by whoever holds it.
func (s *JWTService) Refresh(tokenString string, ttl time.Duration) (valueobject.IssuedToken, error) {
	claims, err := s.parse(tokenString, false)
	if err != nil {
		return valueobject.IssuedToken{}, apperror.ErrMalformedToken.WithCause(err)
	}

	current, err := toTokenClaims(claims)
	if err != nil {
		return valueobject.IssuedToken{}, apperror.ErrMalformedToken.WithCause(err)
	}

	if !current.ExpiresAt.IsZero() && !s.now().Before(current.ExpiresAt) && s.logger != nil {
		logger.LogSecurityEvent(context.Background(), s.logger, "refresh_of_expired_token", "MEDIUM", map[string]interface{}{
			"user_id":    current.UserID,
			"jti":        current.TokenID,
			"expired_at": current.ExpiresAt.Format(time.RFC3339),
		})
	}

	return s.Issue(current.Identity(), ttl)
}

func (s *JWTService) parse(tokenString string, validateClaims bool) (*tokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	}
	if validateClaims {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &tokenClaims{}
	token, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.hmacSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func (s *JWTService) handleValidationError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return apperror.ErrTokenExpired.WithCause(err)
	}
	return apperror.ErrInvalidToken.WithCause(err)
}

func toTokenClaims(claims *tokenClaims) (*outbound.TokenClaims, error) {
	role := entity.Role(claims.Role)
	switch {
	case claims.UserID <= 0:
		return nil, errors.New("token has no user_id")
	case claims.Email == "":
		return nil, errors.New("token has no email")
	case !role.IsValid():
		return nil, fmt.Errorf("token has unknown role %q", claims.Role)
	}

	result := &outbound.TokenClaims{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    role,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return result, nil
}
