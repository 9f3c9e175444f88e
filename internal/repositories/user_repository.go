package repositories

import (
	"errors"
	"time"

	"akun/internal/models"
)

// Sentinel errors returned by repository implementations. Callers match
// them with errors.Is.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserPatch describes a partial update. Nil fields are left untouched.
// Password carries plaintext; the repository hashes it before persisting.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Image    *string
}

// UserRepository defines the interface for user data access. Every write
// that touches the password routes through the hasher inside the
// implementation, so plaintext can never reach the backing store.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	List() ([]models.User, error)
	Update(id string, patch UserPatch) (*models.User, error)
	SetResetCode(id, code string, expiry time.Time) error
	// ResetPassword stores the hash of newPassword and clears both reset
	// fields in a single write.
	ResetPassword(id, newPassword string) error
	Delete(id string) error
}
