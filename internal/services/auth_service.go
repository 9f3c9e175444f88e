package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/security"

	"github.com/dgrijalva/jwt-go"
)

// Sentinel errors for authentication flows.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired reset code")
)

const (
	tokenValidity = 5 * time.Hour
	resetCodeTTL  = 15 * time.Minute
)

// AuthService handles registration, login, session tokens and the
// password-reset flow.
type AuthService struct {
	userRepo  repositories.UserRepository
	mailer    Mailer
	images    ImageStore
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService creates a new AuthService. The signing secret is the only
// piece of configuration it needs.
func NewAuthService(userRepo repositories.UserRepository, mailer Mailer, images ImageStore, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    mailer,
		images:    images,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// RegisterUser registers a new user. If localImagePath is non-empty the
// file is uploaded to the image host, removed locally once hosting
// succeeds, and its public URL stored as the user's avatar. The plaintext
// password on the record is hashed by the repository on create.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User, localImagePath string) error {
	if existing, err := s.userRepo.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s': %w", user.Email, repositories.ErrDuplicateEmail)
	}

	if localImagePath != "" {
		url, err := s.images.Upload(ctx, localImagePath)
		if err != nil {
			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		if err := os.Remove(localImagePath); err != nil {
			log.Printf("Failed to remove temporary upload %s: %v", localImagePath, err)
		}
		user.Image = url
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user by email and password and returns a
// session token plus the user record. A missing user and a wrong password
// are indistinguishable to the caller.
func (s *AuthService) LoginUser(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !security.VerifyPassword(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a session token embedding the user id, valid for five
// hours.
func (s *AuthService) IssueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": s.now().Add(tokenValidity).Unix(),
		"iat": s.now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// VerifyToken checks signature and expiry and returns the embedded user
// id. Any forged, malformed or expired input fails with ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}

// CurrentUser resolves a session token to the full user record with the
// password hash blanked out. A valid token whose id matches no user fails
// the same way an invalid token does.
func (s *AuthService) CurrentUser(tokenString string) (*models.User, error) {
	id, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	resolved := *user
	resolved.Password = ""
	return &resolved, nil
}

// RequestPasswordReset starts the reset flow: a fresh 6-digit code with a
// 15-minute expiry is stored on the user and mailed to them. Fails with
// ErrNotFound when no user matches the email.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	expiry := s.now().Add(resetCodeTTL)
	if err := s.userRepo.SetResetCode(user.ID, code, expiry); err != nil {
		return err
	}

	html := fmt.Sprintf(
		"<p>Your OTP for password reset is: <strong>%s</strong></p><p>This OTP will expire in 15 minutes.</p>",
		code,
	)
	if err := s.mailer.Send(user.Email, "Password Reset OTP", html); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword redeems a reset code. The code must match the one stored
// for the email and the current time must be strictly before its expiry;
// on success the new password is stored and the code cleared in the same
// write, so it cannot be redeemed twice.
func (s *AuthService) ResetPassword(email, code, newPassword string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}
	if code == "" || user.ResetCode != code || !user.HasResetPending(s.now()) {
		return ErrInvalidOrExpiredCode
	}

	if err := s.userRepo.ResetPassword(user.ID, newPassword); err != nil {
		return err
	}

	html := "<p>Your password has been successfully reset.</p>"
	if err := s.mailer.Send(user.Email, "Password Reset Successful", html); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// generateResetCode draws a 6-digit code uniformly from 100000-999999.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
