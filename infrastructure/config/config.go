package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultTokenTTL = 24 * time.Hour

type Config struct {
	DatabaseURL  string
	SecretKey    string
	JWTAlgorithm string
	TokenTTL     time.Duration
	BcryptCost   int
	ServerPort   string
	ServerHost   string
	Environment  string

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitLoginAttempts int
	RateLimitLoginWindow   time.Duration
	RateLimitBlockDuration time.Duration
	RateLimitIPAttempts    int
	RateLimitIPWindow      time.Duration

	LogLevel  string
	LogFormat string

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

var (
	ErrMissingSecretKey    = errors.New("SECRET_KEY is required")
	ErrInvalidTokenTTL     = errors.New("invalid token TTL format")
	ErrInvalidJWTAlgorithm = errors.New("invalid JWT algorithm")
)

// Load reads the process configuration from the environment, after merging
// an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SecretKey:    getEnvOrDefault("SECRET_KEY", os.Getenv("JWT_SECRET")),
		JWTAlgorithm: getEnvOrDefault("JWT_ALG", "HS256"),
		BcryptCost:   getEnvOrDefaultInt("BCRYPT_COST", 10),
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:   getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		Environment:  getEnvOrDefault("ENV", "development"),

		RedisURL:               getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:       getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitLoginAttempts: getEnvOrDefaultInt("RATE_LIMIT_LOGIN_ATTEMPTS", 10),
		RateLimitLoginWindow:   getEnvOrDefaultDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		RateLimitBlockDuration: getEnvOrDefaultDuration("RATE_LIMIT_BLOCK_DURATION", 30*time.Minute),
		RateLimitIPAttempts:    getEnvOrDefaultInt("RATE_LIMIT_IP_ATTEMPTS", 30),
		RateLimitIPWindow:      getEnvOrDefaultDuration("RATE_LIMIT_IP_WINDOW", time.Minute),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		ReadTimeout:     getEnvOrDefaultDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvOrDefaultDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvOrDefaultDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvOrDefaultDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if cfg.JWTAlgorithm != "HS256" {
		return nil, ErrInvalidJWTAlgorithm
	}
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	ttl, err := parseTokenTTL(getEnvOrDefault("JWT_TTL", "86400"))
	if err != nil || ttl <= 0 {
		return nil, ErrInvalidTokenTTL
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := parseTokenTTL(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

// parseTokenTTL accepts either plain seconds or a Go duration string.
func parseTokenTTL(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
