package services

import (
	"context"
	"fmt"
	"log"
	"os"

	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/security"
)

// AccountService handles profile reads and mutations for an authenticated
// user.
type AccountService struct {
	userRepo repositories.UserRepository
	images   ImageStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repositories.UserRepository, images ImageStore) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		images:   images,
	}
}

// UpdateInput carries the optional account changes. Empty strings mean "no
// change". A password change requires the current password.
type UpdateInput struct {
	Name            string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// GetUser returns the account record for the given id.
func (s *AccountService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ListUsers returns all accounts. Intended for admin surfaces only.
func (s *AccountService) ListUsers() ([]models.User, error) {
	return s.userRepo.List()
}

// UpdateAccount applies the requested profile changes. An email change is
// rejected when the address is already taken; a password change is
// rejected when the current password does not verify. If localImagePath is
// non-empty the previous hosted avatar is destroyed, the new file uploaded
// and the local copy removed once hosting succeeds.
func (s *AccountService) UpdateAccount(ctx context.Context, userID string, input UpdateInput, localImagePath string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	patch := repositories.UserPatch{}
	if input.Name != "" {
		patch.Name = &input.Name
	}
	if input.Email != "" && input.Email != user.Email {
		if existing, err := s.userRepo.GetByEmail(input.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("email '%s': %w", input.Email, repositories.ErrDuplicateEmail)
		}
		patch.Email = &input.Email
	}
	if input.NewPassword != "" {
		if !security.VerifyPassword(input.CurrentPassword, user.Password) {
			return nil, fmt.Errorf("current password: %w", ErrInvalidCredentials)
		}
		patch.Password = &input.NewPassword
	}

	if localImagePath != "" {
		if user.Image != "" {
			if err := s.images.Destroy(ctx, user.Image); err != nil {
				return nil, fmt.Errorf("failed to remove previous avatar: %w", err)
			}
		}
		url, err := s.images.Upload(ctx, localImagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		if err := os.Remove(localImagePath); err != nil {
			log.Printf("Failed to remove temporary upload %s: %v", localImagePath, err)
		}
		patch.Image = &url
	}

	return s.userRepo.Update(userID, patch)
}

// DeleteAccount removes the account after confirming the password, first
// releasing any hosted avatar.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(password, user.Password) {
		return fmt.Errorf("password confirmation: %w", ErrInvalidCredentials)
	}

	if user.Image != "" {
		if err := s.images.Destroy(ctx, user.Image); err != nil {
			return fmt.Errorf("failed to remove avatar: %w", err)
		}
	}

	return s.userRepo.Delete(userID)
}
