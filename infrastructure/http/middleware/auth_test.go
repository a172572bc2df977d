package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/config"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/jwt"
)

type guardFixture struct {
	mu      sync.Mutex
	now     time.Time
	tokens  *jwt.JWTService
	guard   *AuthMiddleware
	user    string
	admin   string
	expired string
}

func (f *guardFixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	f := &guardFixture{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	tokens, err := jwt.NewJWTService(&config.Config{SecretKey: "guard-test-secret", JWTAlgorithm: "HS256"}, jwt.WithClock(f.clock))
	require.NoError(t, err)
	f.tokens = tokens
	f.guard = NewAuthMiddleware(tokens, nil)

	user, err := tokens.Issue(entity.Identity{UserID: 1, Email: "a@b.com", Role: entity.RoleUser}, time.Hour)
	require.NoError(t, err)
	admin, err := tokens.Issue(entity.Identity{UserID: 2, Email: "admin@b.com", Role: entity.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	expired, err := tokens.Issue(entity.Identity{UserID: 3, Email: "old@b.com", Role: entity.RoleAdmin}, time.Second)
	require.NoError(t, err)

	f.user, f.admin, f.expired = user.Token, admin.Token, expired.Token
	f.now = f.now.Add(2 * time.Second)
	return f
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", apperror.ErrMissingToken},
		{"Bearer", "", apperror.ErrMalformedHeader},
		{"Bearer ", "", apperror.ErrMalformedHeader},
		{"Bearer  abc", "", apperror.ErrMalformedHeader},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"Token abc", "abc", nil},
		{"Bearer abc extra", "abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, err := BearerToken(tt.header)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestRequireToken(t *testing.T) {
	f := newGuardFixture(t)

	t.Run("valid user token", func(t *testing.T) {
		claims, err := f.guard.RequireToken("Bearer " + f.user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserID)
		assert.Equal(t, entity.RoleUser, claims.Role)
	})

	t.Run("bearer alone", func(t *testing.T) {
		_, err := f.guard.RequireToken("Bearer")
		assert.ErrorIs(t, err, apperror.ErrMalformedHeader)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.guard.RequireToken("Bearer abc.def.ghi")
		assert.ErrorIs(t, err, apperror.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := f.guard.RequireToken("Bearer " + f.expired)
		assert.ErrorIs(t, err, apperror.ErrTokenExpired)
	})
}

func TestRequireAdmin(t *testing.T) {
	f := newGuardFixture(t)

	claims, err := f.guard.RequireAdmin("Bearer " + f.admin)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	_, err = f.guard.RequireAdmin("Bearer " + f.user)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.guard.RequireAdmin("")
	assert.ErrorIs(t, err, apperror.ErrMissingToken)

	// expiry is checked before the role
	_, err = f.guard.RequireAdmin("Bearer " + f.expired)
	assert.ErrorIs(t, err, apperror.ErrTokenExpired)
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardHandlers(t *testing.T) {
	f := newGuardFixture(t)

	var seen *outbound.TokenClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		status  int
		message string
	}{
		{"auth without header", f.guard.RequireAuth(next), "", http.StatusUnauthorized, "Token is missing"},
		{"auth with scheme only", f.guard.RequireAuth(next), "Bearer", http.StatusUnauthorized, "Invalid authorization header format"},
		{"auth with garbage", f.guard.RequireAuth(next), "Bearer abc.def.ghi", http.StatusUnauthorized, "Invalid token"},
		{"auth with expired", f.guard.RequireAuth(next), "Bearer " + f.expired, http.StatusUnauthorized, "Token has expired"},
		{"auth with user", f.guard.RequireAuth(next), "Bearer " + f.user, http.StatusNoContent, ""},
		{"admin with user", f.guard.RequireAdminAuth(next), "Bearer " + f.user, http.StatusForbidden, "Admin access required"},
		{"admin without header", f.guard.RequireAdminAuth(next), "", http.StatusUnauthorized, "Token is missing"},
		{"admin with admin", f.guard.RequireAdminAuth(next), "Bearer " + f.admin, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			rec := serve(tt.handler, tt.header)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message == "" {
				require.NotNil(t, seen)
				return
			}
			assert.Nil(t, seen)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Issue(identity entity.Identity, ttl time.Duration) (valueobject.IssuedToken, error) {
	args := m.Called(identity, ttl)
	return args.Get(0).(valueobject.IssuedToken), args.Error(1)
}

func (m *mockTokenService) Verify(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*outbound.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTokenService) ExtractIdentity(token string) *outbound.TokenClaims {
	args := m.Called(token)
	if claims, ok := args.Get(0).(*outbound.TokenClaims); ok {
		return claims
	}
	return nil
}

func (m *mockTokenService) Refresh(token string, ttl time.Duration) (valueobject.IssuedToken, error) {
	args := m.Called(token, ttl)
	return args.Get(0).(valueobject.IssuedToken), args.Error(1)
}

func TestGuardHidesConfigurationErrors(t *testing.T) {
	tokens := new(mockTokenService)
	tokens.On("Verify", "tok").Return(nil, apperror.ErrConfiguration.WithCause(errors.New("secret unavailable")))
	guard := NewAuthMiddleware(tokens, nil)

	rec := serve(guard.RequireAuth(http.NotFoundHandler()), "Bearer tok")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
	assert.NotContains(t, rec.Body.String(), "secret")
	tokens.AssertExpectations(t)
}

func TestRequireAdminDoesNotCheckRoleWithoutToken(t *testing.T) {
	tokens := new(mockTokenService)
	guard := NewAuthMiddleware(tokens, nil)

	_, err := guard.RequireAdmin("Bearer")
	assert.ErrorIs(t, err, apperror.ErrMalformedHeader)
	tokens.AssertNotCalled(t, "Verify", mock.Anything)
}

func TestCurrentIdentity(t *testing.T) {
	_, ok := CurrentIdentity(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)

	claims := &outbound.TokenClaims{UserID: 7, Email: "x@y.com", Role: entity.RoleAdmin}
	ctx := ContextWithUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), claims)
	identity, ok := CurrentIdentity(ctx)
	require.True(t, ok)
	assert.Equal(t, entity.Identity{UserID: 7, Email: "x@y.com", Role: entity.RoleAdmin}, identity)
}

func TestGuardConcurrentUse(t *testing.T) {
	f := newGuardFixture(t)
	handler := f.guard.RequireAdminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			header, want := "Bearer "+f.admin, http.StatusOK
			if i%2 == 1 {
				header, want = "Bearer "+f.user, http.StatusForbidden
			}
			assert.Equal(t, want, serve(handler, header).Code)
		}(i)
	}
	wg.Wait()
}
