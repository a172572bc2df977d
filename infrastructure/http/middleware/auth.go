package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/response"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

type contextKey string

const authUserKey contextKey = "auth_user"

// AuthMiddleware guards routes with bearer tokens. It only holds the token
// service and a logger, so one instance is shared by every request.
type AuthMiddleware struct {
	tokenService outbound.TokenService
	logger       logger.Logger
}

func NewAuthMiddleware(tokenService outbound.TokenService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		logger:       log,
	}
}

// BearerToken returns the second space separated segment of an
// Authorization header. The scheme word itself is not checked.
func BearerToken(authorizationHeader string) (string, error) {
	if authorizationHeader == "" {
		return "", apperror.ErrMissingToken
	}
	parts := strings.Split(authorizationHeader, " ")
	if len(parts) < 2 || parts[1] == "" {
		return "", apperror.ErrMalformedHeader
	}
	return parts[1], nil
}

// RequireToken verifies the token carried by an Authorization header.
func (m *AuthMiddleware) RequireToken(authorizationHeader string) (*outbound.TokenClaims, error) {
	token, err := BearerToken(authorizationHeader)
	if err != nil {
		return nil, err
	}
	return m.tokenService.Verify(token)
}

// RequireAdmin is RequireToken plus a role check.
func (m *AuthMiddleware) RequireAdmin(authorizationHeader string) (*outbound.TokenClaims, error) {
	claims, err := m.RequireToken(authorizationHeader)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, apperror.ErrForbidden
	}
	return claims, nil
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.guard(m.RequireToken, next)
}

func (m *AuthMiddleware) RequireAdminAuth(next http.Handler) http.Handler {
	return m.guard(m.RequireAdmin, next)
}

func (m *AuthMiddleware) guard(check func(string) (*outbound.TokenClaims, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := check(r.Header.Get("Authorization"))
		if err != nil {
			m.reject(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	if m.logger != nil {
		severity := "LOW"
		switch {
		case errors.Is(err, apperror.ErrForbidden):
			severity = "MEDIUM"
		case apperror.HTTPStatus(err) >= http.StatusInternalServerError:
			severity = "HIGH"
		}
		logger.LogSecurityEvent(r.Context(), m.logger, "access_denied", severity, map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
			"ip":     ClientIP(r),
			"reason": apperror.PublicMessage(err),
		})
	}
	response.FromError(w, err)
}

// CurrentUser returns the claims attached by RequireAuth or RequireAdminAuth.
func CurrentUser(ctx context.Context) *outbound.TokenClaims {
	if claims, ok := ctx.Value(authUserKey).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}

// CurrentIdentity is CurrentUser reduced to the identity triple.
func CurrentIdentity(ctx context.Context) (entity.Identity, bool) {
	claims := CurrentUser(ctx)
	if claims == nil {
		return entity.Identity{}, false
	}
	return claims.Identity(), true
}

// ContextWithUser attaches claims the way the guards do.
func ContextWithUser(ctx context.Context, claims *outbound.TokenClaims) context.Context {
	return context.WithValue(ctx, authUserKey, claims)
}
