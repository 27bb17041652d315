package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findErr          error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func newAuthFixture(t *testing.T, active bool) (*mockAuthRepo, *AuthService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &mockAuthRepo{user: &models.User{
		ID:           "7a0c3a1e-5a57-4b43-9a4f-3f6d8f0f3c11",
		Email:        "ops@example.com",
		Name:         "Ops Lead",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       active,
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "activity-tracker",
	})
	return repo, svc
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo, svc := newAuthFixture(t, true)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " ops@example.com ", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "Ops Lead", res.User.Name)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "activity-tracker", claims.Issuer)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	_, svc := newAuthFixture(t, true)
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	repo, svc := newAuthFixture(t, true)
	repo.findErr = sql.ErrNoRows
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceRejectsInactiveAccount(t *testing.T) {
	repo, svc := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "password"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
	assert.False(t, repo.lastLoginUpdated)

	_, err = svc.Me(context.Background(), repo.user.ID)
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	_, svc := newAuthFixture(t, true)
	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "password"})
	require.NoError(t, err)

	_, other := newAuthFixture(t, true)
	other.config.AccessTokenSecret = "different"
	_, err = other.ValidateToken(res.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	_, svc := newAuthFixture(t, true)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
