package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
)

type stubUserRepo struct {
	existing *models.User
	created  *models.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.existing != nil && s.existing.Email == email {
		return s.existing, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) ListActive(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated"
	s.created = user
	return nil
}

func TestUserServiceCreate(t *testing.T) {
	repo := &stubUserRepo{}
	svc := NewUserService(repo, nil, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "New.Member@Example.com",
		Name:     "New Member",
		Role:     models.RoleMember,
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.member@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("hunter22")))
}

func TestUserServiceCreateConflictAndValidation(t *testing.T) {
	repo := &stubUserRepo{existing: &models.User{Email: "ops@example.com"}}
	svc := NewUserService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Email: "ops@example.com", Name: "Ops", Role: models.RoleAdmin, Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(context.Background(), CreateUserRequest{Email: "x@example.com", Name: "X", Role: "OWNER", Password: "123"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "role")
	assert.Contains(t, appErr.Fields, "password")
}

func TestUserServiceListActiveNeverNil(t *testing.T) {
	svc := NewUserService(&stubUserRepo{}, nil, nil, nil)

	users, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
}

func TestUserServiceCreateInvalidatesCachedReports(t *testing.T) {
	cache := newMemoryCache()
	cacheSvc := NewCacheService(cache, nil, 0, nil, true)
	require.NoError(t, cacheSvc.Set(context.Background(), "reports:2024-01-01:2024-01-07:all:all", map[string]int{"total": 1}, 0))
	svc := NewUserService(&stubUserRepo{}, cacheSvc, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Email: "late@example.com", Name: "Late Joiner", Role: models.RoleMember, Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"reports:*"}, cache.deleted)
	var cached map[string]int
	hit, err := cacheSvc.Get(context.Background(), "reports:2024-01-01:2024-01-07:all:all", &cached)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestUserServiceCreateConflictKeepsCache(t *testing.T) {
	cache := newMemoryCache()
	svc := NewUserService(&stubUserRepo{existing: &models.User{Email: "ops@example.com"}}, NewCacheService(cache, nil, 0, nil, true), nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Email: "ops@example.com", Name: "Ops", Role: models.RoleAdmin, Password: "secret1"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Empty(t, cache.deleted)
}
