package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

const keyPrefix = "ledgerdesk:ratelimit:"

type rateLimitService struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
}

// NewRateLimitService returns a Redis-backed limiter, or a limiter that
// allows everything when disabled.
func NewRateLimitService(config RateLimitConfig, log *logrus.Logger) (inbound.RateLimitService, error) {
	if log == nil {
		log = logger.NewLogrus(logger.LoggerConfig{Level: "info", Format: "json"})
	}
	if !config.Enabled {
		log.Info("Rate limiting disabled")
		return NewNoopRateLimitService(), nil
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithField("redis_addr", opt.Addr).Info("Rate limiting service initialized")

	return NewRedisRateLimitService(redisClient, log), nil
}

func NewRedisRateLimitService(client *redis.Client, log *logrus.Logger) inbound.RateLimitService {
	return &rateLimitService{
		redisClient: client,
		logger:      log,
	}
}

// CheckLimit reports whether key is still under limit within the current window.
func (s *rateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	currentCount, err := s.GetAttempts(ctx, key)
	if err != nil {
		return false, err
	}

	isUnderLimit := currentCount < limit

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":         key,
		"current":     currentCount,
		"limit":       limit,
		"under_limit": isUnderLimit,
	}).Debug("Rate limit check")

	return isUnderLimit, nil
}

// Increment bumps the counter for key. The window starts at the first hit.
func (s *rateLimitService) Increment(ctx context.Context, key string, window time.Duration) error {
	counterKey := keyPrefix + key

	count, err := s.redisClient.Incr(ctx, counterKey).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := s.redisClient.Expire(ctx, counterKey, window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":    key,
		"count":  count,
		"window": window,
	}).Debug("Rate limit incremented")

	return nil
}

func (s *rateLimitService) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	blockKey := keyPrefix + "blocked:" + key

	blockData := map[string]interface{}{
		"reason":         reason,
		"blocked_at":     time.Now().Unix(),
		"duration":       duration.Seconds(),
		"correlation_id": logger.CorrelationIDFromContext(ctx),
	}

	pipeline := s.redisClient.TxPipeline()
	pipeline.HSet(ctx, blockKey, blockData)
	pipeline.Expire(ctx, blockKey, duration)

	if _, err := pipeline.Exec(ctx); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to block key")
		return fmt.Errorf("failed to block key: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":      key,
		"duration": duration,
		"reason":   reason,
	}).Warn("Key blocked due to rate limit exceeded")

	return nil
}

func (s *rateLimitService) IsBlocked(ctx context.Context, key string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, keyPrefix+"blocked:"+key).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check block status")
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}

func (s *rateLimitService) GetAttempts(ctx context.Context, key string) (int, error) {
	count, err := s.redisClient.Get(ctx, keyPrefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		s.logger.WithContext(ctx).WithError(err).Error("Failed to get attempts count")
		return 0, fmt.Errorf("failed to get attempts: %w", err)
	}
	return count, nil
}

type noopRateLimitService struct{}

func NewNoopRateLimitService() inbound.RateLimitService {
	return noopRateLimitService{}
}

func (noopRateLimitService) CheckLimit(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (noopRateLimitService) Increment(context.Context, string, time.Duration) error {
	return nil
}

func (noopRateLimitService) Block(context.Context, string, time.Duration, string) error {
	return nil
}

func (noopRateLimitService) IsBlocked(context.Context, string) (bool, error) {
	return false, nil
}

func (noopRateLimitService) GetAttempts(context.Context, string) (int, error) {
	return 0, nil
}
