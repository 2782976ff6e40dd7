package services

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"miaoyou_backend/internal/auth"
	"miaoyou_backend/internal/models"
	"miaoyou_backend/internal/repositories"
	"miaoyou_backend/internal/services/dto"
	"miaoyou_backend/pkg/apperrors"
)

type fakeUserRepo struct {
	repositories.UserRepository

	users   map[string]*models.User
	admins  int64
	created []*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByLogin(_ *gorm.DB, login string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) CountAdmins(_ *gorm.DB) (int64, error) {
	return f.admins, nil
}

func (f *fakeUserRepo) CreateUser(_ *gorm.DB, u *models.User) error {
	f.created = append(f.created, u)
	return nil
}

func testUser(t *testing.T, id, username string, active bool) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(t, err)

	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Role:     models.UserRoleUser,
		IsActive: active,
	}
	u.ID = id
	return u
}

func newTestAuthService(repo repositories.UserRepository) (AuthService, *auth.JWTManager) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, time.Hour)
	return NewAuthService(repo, jwtManager), jwtManager
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo(
		testUser(t, "u1", "alice", true),
		testUser(t, "u2", "bob", false),
	)
	svc, jwtManager := newTestAuthService(repo)

	t.Run("username and password", func(t *testing.T) {
		resp, err := svc.Login(nil, &dto.LoginRequest{Username: "alice", Password: "secret123"})
		require.NoError(t, err)

		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, int64(3600), resp.ExpiresIn)
		assert.Equal(t, "u1", resp.User.ID)

		claims, err := jwtManager.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, string(models.UserRoleUser), claims.Role)
	})

	t.Run("email works as login", func(t *testing.T) {
		resp, err := svc.Login(nil, &dto.LoginRequest{Username: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(nil, &dto.LoginRequest{Username: "alice", Password: "nope-nope"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		_, err := svc.Login(nil, &dto.LoginRequest{Username: "carol", Password: "secret123"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		_, err := svc.Login(nil, &dto.LoginRequest{Username: "bob", Password: "secret123"})
		assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newFakeUserRepo(testUser(t, "u1", "alice", true))
	svc, jwtManager := newTestAuthService(repo)

	token, err := jwtManager.GenerateToken("u1", "alice", "user")
	require.NoError(t, err)

	resp, err := svc.RefreshToken(nil, token)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = svc.RefreshToken(nil, "garbage")
	appErr := requireAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, apperrors.CodeInvalidToken, appErr.Code)

	ghost, err := jwtManager.GenerateToken("ghost", "ghost", "user")
	require.NoError(t, err)
	_, err = svc.RefreshToken(nil, ghost)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAuthService_GetProfile(t *testing.T) {
	svc, _ := newTestAuthService(newFakeUserRepo(testUser(t, "u1", "alice", true)))

	profile, err := svc.GetProfile(nil, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)

	_, err = svc.GetProfile(nil, "nobody")
	requireAppError(t, err, http.StatusNotFound)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	seed := AdminSeed{Email: "root@example.com", Password: "admin123456"}

	t.Run("creates first admin", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc, _ := newTestAuthService(repo)

		require.NoError(t, svc.EnsureAdmin(nil, seed))
		require.Len(t, repo.created, 1)

		admin := repo.created[0]
		assert.Equal(t, "admin", admin.Username)
		assert.Equal(t, models.UserRoleAdmin, admin.Role)
		assert.True(t, admin.IsActive)
		assert.True(t, auth.CheckPasswordHash("admin123456", admin.Password))
	})

	t.Run("keeps existing admin", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.admins = 1
		svc, _ := newTestAuthService(repo)

		require.NoError(t, svc.EnsureAdmin(nil, seed))
		assert.Empty(t, repo.created)
	})

	t.Run("no credentials configured", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc, _ := newTestAuthService(repo)

		require.NoError(t, svc.EnsureAdmin(nil, AdminSeed{}))
		assert.Empty(t, repo.created)
	})
}
