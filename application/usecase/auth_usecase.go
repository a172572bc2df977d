package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerdesk/ledgerdesk/application/port/inbound"
	"github.com/ledgerdesk/ledgerdesk/application/port/outbound"
	"github.com/ledgerdesk/ledgerdesk/application/usecase/internal/account"
	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
	"github.com/ledgerdesk/ledgerdesk/domain/entity"
	"github.com/ledgerdesk/ledgerdesk/domain/valueobject"
	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

// LoginLimits locks an account after Attempts failed logins within Window.
type LoginLimits struct {
	Attempts int
	Window   time.Duration
	Block    time.Duration
}

type AuthUseCase struct {
	userRepository   outbound.UserRepository
	tokenService     outbound.TokenService
	passwordService  outbound.PasswordService
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
	tokenTTL         time.Duration
	loginLimits      LoginLimits
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	rateLimitService inbound.RateLimitService,
	log logger.Logger,
	tokenTTL time.Duration,
	loginLimits LoginLimits,
) *AuthUseCase {
	return &AuthUseCase{
		userRepository:   userRepo,
		tokenService:     tokenService,
		passwordService:  passwordService,
		rateLimitService: rateLimitService,
		logger:           log,
		tokenTTL:         tokenTTL,
		loginLimits:      loginLimits,
	}
}

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

// Register creates a regular user and signs them in. The role is always user.
func (uc *AuthUseCase) Register(ctx context.Context, req inbound.RegisterRequest) (*inbound.AuthResponse, error) {
	if err := account.RequireFields(map[string]string{
		"fullname": req.Fullname,
		"email":    req.Email,
		"password": req.Password,
	}, "fullname", "email", "password"); err != nil {
		return nil, err
	}
	if err := account.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	user, err := account.Create(ctx, uc.userRepository, uc.passwordService, req.Fullname, req.Email, req.Password, entity.RoleUser)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokenService.Issue(user.Identity(), uc.tokenTTL)
	if err != nil {
		uc.logger.Error(ctx, "Failed to issue token after signup", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "register", user.ID, logger.ClientIPFromContext(ctx), true, nil)
	return &inbound.AuthResponse{User: user, Token: token}, nil
}

// Login checks the credentials and issues a token. Every mismatch yields the
// same error so callers cannot probe which emails exist.
func (uc *AuthUseCase) Login(ctx context.Context, req inbound.LoginRequest) (*inbound.AuthResponse, error) {
	ip := logger.ClientIPFromContext(ctx)

	creds, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "login_validation_failed", 0, ip, false, map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperror.ErrInvalidCredentials
	}

	limitKey := "login:user:" + creds.Email()
	if uc.isBlocked(ctx, limitKey) {
		logger.LogSecurityEvent(ctx, uc.logger, "blocked_account_login_attempt", "MEDIUM", map[string]interface{}{
			"email": creds.Email(),
			"ip":    ip,
		})
		return nil, apperror.ErrRateLimitExceeded
	}

	user, err := uc.userRepository.FindByEmail(ctx, creds.Email())
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			uc.recordFailedLogin(ctx, limitKey)
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", 0, ip, false, map[string]interface{}{
				"email": creds.Email(),
			})
			return nil, apperror.ErrInvalidCredentials
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"email": creds.Email(),
		})
		return nil, apperror.Internal(err)
	}

	start := time.Now()
	err = uc.passwordService.ComparePassword(user.Password, creds.Password())
	logger.LogPerformance(ctx, uc.logger, "password_verification", time.Since(start), map[string]interface{}{
		"user_id": user.ID,
	})
	if err != nil {
		if !errors.Is(err, outbound.ErrPasswordMismatch) {
			uc.logger.Error(ctx, "Password verification error", err, map[string]interface{}{
				"user_id": user.ID,
			})
		}
		uc.recordFailedLogin(ctx, limitKey)
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", user.ID, ip, false, nil)
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := uc.tokenService.Issue(user.Identity(), uc.tokenTTL)
	if err != nil {
		uc.logger.Error(ctx, "Failed to issue token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_success", user.ID, ip, true, nil)
	return &inbound.AuthResponse{User: user, Token: token}, nil
}

// Refresh re-issues a token for the identity inside token, expired or not.
func (uc *AuthUseCase) Refresh(ctx context.Context, token string) (valueobject.IssuedToken, error) {
	issued, err := uc.tokenService.Refresh(token, uc.tokenTTL)
	if err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "token_refresh_failed", 0, logger.ClientIPFromContext(ctx), false, nil)
		return valueobject.IssuedToken{}, err
	}
	logger.LogAuthEvent(ctx, uc.logger, "token_refreshed", 0, logger.ClientIPFromContext(ctx), true, nil)
	return issued, nil
}

func (uc *AuthUseCase) Verify(_ context.Context, token string) (*outbound.TokenClaims, error) {
	return uc.tokenService.Verify(token)
}

func (uc *AuthUseCase) Profile(ctx context.Context, userID int64) (*entity.User, error) {
	return account.Find(ctx, uc.userRepository, userID)
}

func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID int64, req inbound.ChangePasswordRequest) error {
	if err := account.RequireFields(map[string]string{
		"current_password": req.CurrentPassword,
		"new_password":     req.NewPassword,
	}, "current_password", "new_password"); err != nil {
		return err
	}

	user, err := account.Find(ctx, uc.userRepository, userID)
	if err != nil {
		return err
	}

	if err := uc.passwordService.ComparePassword(user.Password, req.CurrentPassword); err != nil {
		logger.LogAuthEvent(ctx, uc.logger, "change_password_failed", userID, logger.ClientIPFromContext(ctx), false, nil)
		return apperror.BadRequest("Current password is incorrect")
	}
	if err := account.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := uc.passwordService.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	user.Password = hash
	user.Touch()

	if err := uc.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal(err)
	}

	logger.LogAuthEvent(ctx, uc.logger, "password_changed", userID, logger.ClientIPFromContext(ctx), true, nil)
	return nil
}

func (uc *AuthUseCase) isBlocked(ctx context.Context, key string) bool {
	if uc.rateLimitService == nil {
		return false
	}
	blocked, err := uc.rateLimitService.IsBlocked(ctx, key)
	if err != nil {
		uc.logger.Error(ctx, "Failed to check account block status", err, map[string]interface{}{
			"key": key,
		})
		return false
	}
	return blocked
}

func (uc *AuthUseCase) recordFailedLogin(ctx context.Context, key string) {
	if uc.rateLimitService == nil || uc.loginLimits.Attempts <= 0 {
		return
	}
	if err := uc.rateLimitService.Increment(ctx, key, uc.loginLimits.Window); err != nil {
		uc.logger.Error(ctx, "Failed to record failed login", err, map[string]interface{}{
			"key": key,
		})
		return
	}

	attempts, err := uc.rateLimitService.GetAttempts(ctx, key)
	if err != nil || attempts < uc.loginLimits.Attempts {
		return
	}
	if err := uc.rateLimitService.Block(ctx, key, uc.loginLimits.Block, "too many failed logins"); err != nil {
		uc.logger.Error(ctx, "Failed to block account", err, map[string]interface{}{
			"key": key,
		})
		return
	}
	logger.LogSecurityEvent(ctx, uc.logger, "account_login_blocked", "HIGH", map[string]interface{}{
		"key":      key,
		"attempts": attempts,
	})
}
