package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/db/models"
	pkgerrors "github.com/rmadriz/portfolio-backend/pkg/errors"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/rmadriz/portfolio-backend/pkg/security"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users     map[string]*models.User
	lastLogin map[uuid.UUID]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     map[string]*models.User{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok || !user.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id && user.IsActive {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubLimiter struct {
	counts map[string]int64
	fail   error
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if s.fail != nil {
		return false, 0, s.fail
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[scope]++
	return s.counts[scope] <= limit, s.counts[scope], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "portfolio-api",
		ExpirationMinutes: 60,
	}
}

func testLimits() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		LoginWindow:     time.Minute,
		LoginEmailLimit: 3,
		LoginIPLimit:    5,
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: zerolog.Disabled})
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	})
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Admin",
		Role:         "admin",
		IsActive:     true,
	}
	repo.users[email] = user
	return user
}

func newAuthService(t *testing.T, repo *stubUserRepo, limiter rateLimiter) Service {
	t.Helper()
	svc, err := NewService(repo, limiter, testJWTConfig(), testLimits(), testLogger())
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "admin@example.com", "hunter2!")
	svc := newAuthService(t, repo, nil)

	out, err := svc.Login(context.Background(), LoginInput{
		Email:    " Admin@Example.com ",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, user.ID, out.User.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), out.ExpiresAt, 5*time.Second)
	assert.Contains(t, repo.lastLogin, user.ID)

	session, err := svc.Verify(context.Background(), out.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "admin", session.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@example.com", "hunter2!")
	svc := newAuthService(t, repo, nil)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc := newAuthService(t, newStubUserRepo(), nil)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRateLimited(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@example.com", "hunter2!")
	limiter := &stubLimiter{}
	svc := newAuthService(t, repo, limiter)
	ctx := context.Background()

	input := LoginInput{Email: "admin@example.com", Password: "wrong", ClientIP: "10.0.0.1"}
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, input)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	}

	_, err := svc.Login(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}

func TestLoginLimiterFailureFailsOpen(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@example.com", "hunter2!")
	limiter := &stubLimiter{fail: assert.AnError}
	svc := newAuthService(t, repo, limiter)

	out, err := svc.Login(context.Background(), LoginInput{
		Email:    "admin@example.com",
		Password: "hunter2!",
		ClientIP: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newAuthService(t, newStubUserRepo(), nil)

	_, err := svc.Verify(context.Background(), "not-a-token")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestVerifyDeactivatedUser(t *testing.T) {
	repo := newStubUserRepo()
	user := seedUser(t, repo, "admin@example.com", "hunter2!")
	svc := newAuthService(t, repo, nil)

	out, err := svc.Login(context.Background(), LoginInput{
		Email:    "admin@example.com",
		Password: "hunter2!",
	})
	require.NoError(t, err)

	user.IsActive = false

	_, err = svc.Verify(context.Background(), out.Token)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}
