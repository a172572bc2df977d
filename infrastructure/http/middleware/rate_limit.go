package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/http/response"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

// RateLimitRule allows Limit requests per Window and blocks the client for
// Block once the limit is hit.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
	Block  time.Duration
}

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
}

func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
	}
}

// Limit counts requests per client IP under scope. Limiter failures let the
// request through.
func (m *RateLimitMiddleware) Limit(scope string, rule RateLimitRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.rateLimitService == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientIP := ClientIP(r)
			key := scope + ":ip:" + clientIP
			fields := map[string]interface{}{
				"ip":    clientIP,
				"key":   key,
				"path":  r.URL.Path,
				"scope": scope,
			}

			blocked, err := m.rateLimitService.IsBlocked(ctx, key)
			if err != nil {
				m.logger.Error(ctx, "Failed to check block status", err, fields)
			}
			if blocked {
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", fields)
				m.tooManyRequests(w, rule.Block)
				return
			}

			allowed, err := m.rateLimitService.CheckLimit(ctx, key, rule.Limit, rule.Window)
			if err != nil {
				m.logger.Error(ctx, "Failed to check rate limit", err, fields)
				allowed = true
			}
			if !allowed {
				if err := m.rateLimitService.Block(ctx, key, rule.Block, "rate limit exceeded"); err != nil {
					m.logger.Error(ctx, "Failed to block client", err, fields)
				}
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", fields)
				m.tooManyRequests(w, rule.Block)
				return
			}

			if err := m.rateLimitService.Increment(ctx, key, rule.Window); err != nil {
				m.logger.Error(ctx, "Failed to increment rate limit", err, fields)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	response.FromError(w, apperror.ErrRateLimitExceeded)
}
