package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

func quietLogger() logger.Logger {
	return logger.NewStructuredLogger(logger.LoggerConfig{Level: "debug", Format: "json", Output: io.Discard})
}

type mockRateLimitService struct {
	mock.Mock
}

func (m *mockRateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *mockRateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	return m.Called(ctx, key, window).Error(0)
}

func (m *mockRateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	return m.Called(ctx, key, duration, reason).Error(0)
}

func (m *mockRateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockRateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

var loginRule = RateLimitRule{Limit: 10, Window: 15 * time.Minute, Block: 30 * time.Minute}

func loginRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	return req
}

func TestRateLimitAllowsAndCounts(t *testing.T) {
	service := new(mockRateLimitService)
	key := "login:ip:10.0.0.1"
	service.On("IsBlocked", mock.Anything, key).Return(false, nil)
	service.On("CheckLimit", mock.Anything, key, 10, 15*time.Minute).Return(true, nil)
	service.On("Increment", mock.Anything, key, 15*time.Minute).Return(nil)

	m := NewRateLimitMiddleware(service, quietLogger())
	rec := httptest.NewRecorder()
	m.Limit("login", loginRule)(okHandler()).ServeHTTP(rec, loginRequest())

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	service := new(mockRateLimitService)
	key := "login:ip:10.0.0.1"
	service.On("IsBlocked", mock.Anything, key).Return(false, nil)
	service.On("CheckLimit", mock.Anything, key, 10, 15*time.Minute).Return(false, nil)
	service.On("Block", mock.Anything, key, 30*time.Minute, "rate limit exceeded").Return(nil)

	m := NewRateLimitMiddleware(service, quietLogger())
	rec := httptest.NewRecorder()
	m.Limit("login", loginRule)(okHandler()).ServeHTTP(rec, loginRequest())

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1800", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"success":false`)
	service.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimitRejectsBlockedClient(t *testing.T) {
	service := new(mockRateLimitService)
	service.On("IsBlocked", mock.Anything, "login:ip:10.0.0.1").Return(true, nil)

	m := NewRateLimitMiddleware(service, quietLogger())
	rec := httptest.NewRecorder()
	m.Limit("login", loginRule)(okHandler()).ServeHTTP(rec, loginRequest())

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	service.AssertNotCalled(t, "CheckLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRateLimitFailsOpen(t *testing.T) {
	service := new(mockRateLimitService)
	redisDown := errors.New("connection refused")
	service.On("IsBlocked", mock.Anything, mock.Anything).Return(false, redisDown)
	service.On("CheckLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, redisDown)
	service.On("Increment", mock.Anything, mock.Anything, mock.Anything).Return(redisDown)

	m := NewRateLimitMiddleware(service, quietLogger())
	rec := httptest.NewRecorder()
	m.Limit("login", loginRule)(okHandler()).ServeHTTP(rec, loginRequest())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCorrelationID(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(CorrelationIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(CorrelationIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))
	})
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.ledgerdesk.io"}, true)(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "https://app.ledgerdesk.io")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "https://app.ledgerdesk.io", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/users", nil)
		req.Header.Set("Origin", "https://app.ledgerdesk.io")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	h := RequestLogger(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:4000"
	assert.Equal(t, "192.168.1.9", ClientIP(req))

	req.Header.Set("X-Real-IP", "172.16.0.2")
	assert.Equal(t, "172.16.0.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}
