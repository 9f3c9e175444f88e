package models

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account record.
type User struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name            string     `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Email           string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password        string     `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash after creation
	Image           string     `json:"image" gorm:"type:varchar(512)"`
	Role            string     `json:"role" gorm:"type:varchar(16);default:user" validate:"omitempty,oneof=user admin"`
	ResetCode       string     `json:"-" gorm:"type:varchar(6)"`
	ResetCodeExpiry *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Profile is the projection of a user returned to clients. The password
// hash and reset fields never appear here.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// Profile returns the client-facing view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Image: u.Image,
	}
}

// HasResetPending reports whether an unexpired reset code is stored.
func (u *User) HasResetPending(now time.Time) bool {
	return u.ResetCode != "" && u.ResetCodeExpiry != nil && now.Before(*u.ResetCodeExpiry)
}
