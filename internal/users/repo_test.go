package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/autoads/autoads-backend/pkg/db"
	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return NewRepository(conn)
}

func TestCreateNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "  Seller@Example.COM ", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Equal(t, "seller@example.com", user.Email)
	require.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "SELLER@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "seller@example.com", PasswordHash: "other"})
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestUpdateLastLoginAndPassword(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user, err := repo.Create(ctx, CreateUserDTO{Email: "a@b.co", PasswordHash: "old"})
	require.NoError(t, err)

	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new"))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	require.True(t, reloaded.LastLoginAt.Equal(at))
	require.Equal(t, "new", reloaded.PasswordHash)

	_, err = repo.FindByEmail(ctx, "missing@b.co")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFromModelOmitsHash(t *testing.T) {
	dto := FromModel(&models.User{Email: "a@b.co", PasswordHash: "secret"})
	require.Equal(t, "a@b.co", dto.Email)
	require.Nil(t, FromModel(nil))
}

func TestUpdateUnknownUser(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateLastLogin(context.Background(), uuid.New(), time.Now())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateDisabledAccount(t *testing.T) {
	repo := newTestRepo(t)
	user, err := repo.Create(context.Background(), CreateUserDTO{Email: "off@b.co", PasswordHash: "h", Disabled: true})
	require.NoError(t, err)
	require.False(t, user.IsActive)

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	active, err := repo.Create(context.Background(), CreateUserDTO{Email: "on@b.co", PasswordHash: "h"})
	require.NoError(t, err)
	stored, err = repo.FindByID(context.Background(), active.ID)
	require.NoError(t, err)
	require.True(t, stored.IsActive)
}
