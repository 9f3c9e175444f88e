package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"akun/internal/models"
	"akun/internal/security"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// isDuplicateErr detects a unique-constraint violation across the sqlite
// and postgres drivers.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Create inserts a new user. The plaintext password on the record is
// replaced with its hash before the write.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	hashed, err := security.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	if err := r.db.Create(user).Error; err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("creating user %s: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (r *GORMUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update applies the non-nil fields of the patch and returns the updated
// record. A patched password is hashed before the write.
func (r *GORMUserRepository) Update(id string, patch UserPatch) (*models.User, error) {
	values := map[string]interface{}{}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Email != nil {
		values["email"] = *patch.Email
	}
	if patch.Image != nil {
		values["image"] = *patch.Image
	}
	if patch.Password != nil {
		hashed, err := security.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		values["password"] = hashed
	}

	if len(values) > 0 {
		res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			if isDuplicateErr(res.Error) {
				return nil, fmt.Errorf("updating user %s: %w", id, ErrDuplicateEmail)
			}
			return nil, fmt.Errorf("failed to update user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
	}
	return r.GetByID(id)
}

// SetResetCode stores a pending reset code and its expiry.
func (r *GORMUserRepository) SetResetCode(id, code string, expiry time.Time) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_code":        code,
		"reset_code_expiry": expiry,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to set reset code for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// ResetPassword writes the new password hash and clears the reset fields
// in one statement, so a redeemed code cannot be replayed.
func (r *GORMUserRepository) ResetPassword(id, newPassword string) error {
	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	res := r.db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password":          hashed,
		"reset_code":        "",
		"reset_code_expiry": nil,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to reset password for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the user record.
func (r *GORMUserRepository) Delete(id string) error {
	res := r.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
