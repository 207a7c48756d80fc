package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/auth"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/rmadriz/portfolio-backend/pkg/security"
)

type repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Service authenticates admin users and issues access tokens. Cookie
// handling lives at the controller; the service only mints and verifies.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	Verify(ctx context.Context, token string) (*SessionOutput, error)
}

type service struct {
	repo    repository
	limiter rateLimiter
	jwtCfg  config.JWTConfig
	limits  config.AuthRateLimitConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the auth service. The limiter may be nil; login
// then runs unthrottled.
func NewService(repo repository, limiter rateLimiter, jwtCfg config.JWTConfig, limits config.AuthRateLimitConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		limiter: limiter,
		jwtCfg:  jwtCfg,
		limits:  limits,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// LoginInput carries the credentials plus the caller address used for
// rate limiting.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientIP string `json:"-"`
}

// SessionOutput describes the authenticated admin.
type SessionOutput struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// LoginOutput carries the minted token alongside the session. The token is
// also set as an http-only cookie by the controller.
type LoginOutput struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      SessionOutput `json:"user"`
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allowLogin(ctx, email, input.ClientIP); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Error(ctx, "recording last login failed", err)
	}

	return &LoginOutput{
		Token:     token,
		ExpiresAt: now.Add(s.jwtCfg.TokenTTL()),
		User:      toSession(user),
	}, nil
}

// Verify parses the token and confirms the user still exists and is active.
func (s *service) Verify(ctx context.Context, token string) (*SessionOutput, error) {
	claims, err := auth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer active")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	out := toSession(user)
	return &out, nil
}

// allowLogin throttles per email and per client address. A limiter backend
// failure fails open so an unreachable Redis cannot lock admins out.
func (s *service) allowLogin(ctx context.Context, email, clientIP string) error {
	if s.limiter == nil {
		return nil
	}

	checks := []struct {
		scope string
		limit int64
	}{
		{"login:email:" + email, int64(s.limits.LoginEmailLimit)},
	}
	if clientIP != "" {
		checks = append(checks, struct {
			scope string
			limit int64
		}{"login:ip:" + clientIP, int64(s.limits.LoginIPLimit)})
	}

	for _, check := range checks {
		if check.limit <= 0 {
			continue
		}
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, check.scope, check.limit, s.limits.LoginWindow)
		if err != nil {
			s.logg.Error(ctx, "login rate limiter unavailable", err)
			continue
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts")
		}
	}
	return nil
}

func toSession(user *models.User) SessionOutput {
	return SessionOutput{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}
}
