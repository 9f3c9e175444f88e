package services_test

import (
	"context"
	"os"
	"testing"

	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/security"
	"akun/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAccountService_UpdateNameOnly(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	accountService := services.NewAccountService(mockRepo, new(services.MockImageStore))

	hashed, _ := security.HashPassword("secret1")
	user := &models.User{ID: "user-123", Name: "A", Email: "a@x.com", Password: hashed}

	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	mockRepo.On("Update", user.ID, mock.MatchedBy(func(p repositories.UserPatch) bool {
		// Only the name moves; email and password stay untouched.
		return p.Name != nil && *p.Name == "B" && p.Email == nil && p.Password == nil && p.Image == nil
	})).Return(&models.User{ID: user.ID, Name: "B", Email: user.Email, Password: hashed}, nil).Once()

	updated, err := accountService.UpdateAccount(context.Background(), user.ID, services.UpdateInput{Name: "B"}, "")
	assert.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "a@x.com", updated.Email)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_UpdateEmailTaken(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	accountService := services.NewAccountService(mockRepo, new(services.MockImageStore))

	user := &models.User{ID: "user-123", Name: "A", Email: "a@x.com"}
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	mockRepo.On("GetByEmail", "b@x.com").Return(&models.User{ID: "user-456"}, nil).Once()

	_, err := accountService.UpdateAccount(context.Background(), user.ID, services.UpdateInput{Email: "b@x.com"}, "")
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_UpdatePassword(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	accountService := services.NewAccountService(mockRepo, new(services.MockImageStore))

	hashed, _ := security.HashPassword("secret1")
	user := &models.User{ID: "user-123", Name: "A", Email: "a@x.com", Password: hashed}

	// Wrong current password is rejected before any write.
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	_, err := accountService.UpdateAccount(context.Background(), user.ID, services.UpdateInput{
		CurrentPassword: "wrong",
		NewPassword:     "secret2",
	}, "")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Correct current password routes the new one into the patch.
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	mockRepo.On("Update", user.ID, mock.MatchedBy(func(p repositories.UserPatch) bool {
		return p.Password != nil && *p.Password == "secret2"
	})).Return(user, nil).Once()

	_, err = accountService.UpdateAccount(context.Background(), user.ID, services.UpdateInput{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
	}, "")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestAccountService_UpdateReplacesAvatar(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	mockImages := new(services.MockImageStore)
	accountService := services.NewAccountService(mockRepo, mockImages)

	tmp, err := os.CreateTemp(t.TempDir(), "avatar-*.png")
	assert.NoError(t, err)
	tmp.Close()

	user := &models.User{ID: "user-123", Name: "A", Email: "a@x.com", Image: "https://img.example/user_images/old.png"}

	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	mockImages.On("Destroy", mock.Anything, user.Image).Return(nil).Once()
	mockImages.On("Upload", mock.Anything, tmp.Name()).Return("https://img.example/user_images/new.png", nil).Once()
	mockRepo.On("Update", user.ID, mock.MatchedBy(func(p repositories.UserPatch) bool {
		return p.Image != nil && *p.Image == "https://img.example/user_images/new.png"
	})).Return(user, nil).Once()

	_, err = accountService.UpdateAccount(context.Background(), user.ID, services.UpdateInput{}, tmp.Name())
	assert.NoError(t, err)

	_, statErr := os.Stat(tmp.Name())
	assert.True(t, os.IsNotExist(statErr))

	mockRepo.AssertExpectations(t)
	mockImages.AssertExpectations(t)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	mockImages := new(services.MockImageStore)
	accountService := services.NewAccountService(mockRepo, mockImages)

	hashed, _ := security.HashPassword("secret1")
	user := &models.User{ID: "user-123", Email: "a@x.com", Password: hashed, Image: "https://img.example/user_images/a.png"}

	// Wrong password.
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	err := accountService.DeleteAccount(context.Background(), user.ID, "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Correct password destroys the avatar, then the record.
	mockRepo.On("GetByID", user.ID).Return(user, nil).Once()
	mockImages.On("Destroy", mock.Anything, user.Image).Return(nil).Once()
	mockRepo.On("Delete", user.ID).Return(nil).Once()

	err = accountService.DeleteAccount(context.Background(), user.ID, "secret1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockImages.AssertExpectations(t)
}

func TestAccountService_ListUsers(t *testing.T) {
	mockRepo := new(repositories.MockUserRepository)
	accountService := services.NewAccountService(mockRepo, new(services.MockImageStore))

	users := []models.User{{ID: "1", Email: "a@x.com"}, {ID: "2", Email: "b@x.com"}}
	mockRepo.On("List").Return(users, nil).Once()

	got, err := accountService.ListUsers()
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	mockRepo.AssertExpectations(t)
}
