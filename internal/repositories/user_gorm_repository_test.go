package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *repositories.GORMUserRepository {
	t.Helper()
	// One shared-cache database per test, so GORM's pooled connections all
	// see the same data without leaking state across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return repositories.NewGORMUserRepository(db)
}

func TestCreateHashesPassword(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Name: "A", Email: "a@x.com", Password: "secret1"}
	require.NoError(t, repo.Create(user))

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, security.VerifyPassword("secret1", stored.Password))
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Create(&models.User{Name: "A", Email: "a@x.com", Password: "secret1"}))

	err := repo.Create(&models.User{Name: "B", Email: "a@x.com", Password: "other12"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}

func TestGetByEmailNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetByEmail("missing@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUpdatePatch(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Name: "A", Email: "a@x.com", Password: "secret1"}
	require.NoError(t, repo.Create(user))
	originalHash := user.Password

	name := "B"
	updated, err := repo.Update(user.ID, repositories.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "a@x.com", updated.Email)
	// Untouched fields stay put, including the hash.
	assert.Equal(t, originalHash, updated.Password)

	newPassword := "secret2"
	updated, err = repo.Update(user.ID, repositories.UserPatch{Password: &newPassword})
	require.NoError(t, err)
	assert.NotEqual(t, "secret2", updated.Password)
	assert.True(t, security.VerifyPassword("secret2", updated.Password))
}

func TestUpdateDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Create(&models.User{Name: "A", Email: "a@x.com", Password: "secret1"}))
	user := &models.User{Name: "B", Email: "b@x.com", Password: "secret1"}
	require.NoError(t, repo.Create(user))

	email := "a@x.com"
	_, err := repo.Update(user.ID, repositories.UserPatch{Email: &email})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}

func TestUpdateMissingUser(t *testing.T) {
	repo := setupRepo(t)

	name := "nobody"
	_, err := repo.Update("no-such-id", repositories.UserPatch{Name: &name})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestResetPasswordClearsCode(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Name: "A", Email: "a@x.com", Password: "secret1"}
	require.NoError(t, repo.Create(user))

	expiry := time.Now().Add(15 * time.Minute)
	require.NoError(t, repo.SetResetCode(user.ID, "123456", expiry))

	stored, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", stored.ResetCode)
	require.NotNil(t, stored.ResetCodeExpiry)

	require.NoError(t, repo.ResetPassword(user.ID, "secret2"))

	stored, err = repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ResetCode)
	assert.Nil(t, stored.ResetCodeExpiry)
	assert.True(t, security.VerifyPassword("secret2", stored.Password))
	assert.False(t, security.VerifyPassword("secret1", stored.Password))
}

func TestDelete(t *testing.T) {
	repo := setupRepo(t)

	user := &models.User{Name: "A", Email: "a@x.com", Password: "secret1"}
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.GetByID(user.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(user.ID), repositories.ErrNotFound)
}
