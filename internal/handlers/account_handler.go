package handlers

import (
	"errors"

	"akun/internal/middleware"
	"akun/internal/models"
	"akun/internal/repositories"
	"akun/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for the authenticated user's own
// account, plus the admin user listing.
type AccountHandler struct {
	accountService *services.AccountService
	validate       *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the account routes on a gated router.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/account", h.HandleGetAccount)
	router.Put("/account", h.HandleUpdateAccount)
	router.Delete("/account", h.HandleDeleteAccount)
}

// RegisterAdminRoutes registers the admin-only routes on a role-gated
// router.
func (h *AccountHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
}

// HandleGetAccount returns the caller's own projection.
func (h *AccountHandler) HandleGetAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    user.Profile(),
	})
}

// UpdateAccountRequest represents the request body for a profile update.
// Every field is optional; a password change additionally requires the
// current password and a matching confirmation.
type UpdateAccountRequest struct {
	Name               string `json:"name" form:"name" validate:"omitempty,min=1,max=100"`
	Email              string `json:"email" form:"email" validate:"omitempty,email"`
	CurrentPassword    string `json:"currentPassword" form:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword        string `json:"newPassword" form:"newPassword" validate:"omitempty,min=6"`
	ConfirmNewPassword string `json:"confirmNewPassword" form:"confirmNewPassword" validate:"eqfield=NewPassword"`
}

// HandleUpdateAccount applies profile changes for the caller, with an
// optional avatar upload.
func (h *AccountHandler) HandleUpdateAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req UpdateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	localImagePath, err := saveUploadedImage(c)
	if err != nil {
		return internalError(c, err)
	}

	updated, err := h.accountService.UpdateAccount(c.UserContext(), user.ID, services.UpdateInput{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, localImagePath)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Current password is incorrect",
			})
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Email already in use",
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Account updated successfully",
		"user":    updated.Profile(),
	})
}

// DeleteAccountRequest represents the request body for account deletion.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// HandleDeleteAccount removes the caller's account after confirming the
// password.
func (h *AccountHandler) HandleDeleteAccount(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Password is required to delete account",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Password is required to delete account",
		})
	}

	if err := h.accountService.DeleteAccount(c.UserContext(), user.ID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Password is incorrect",
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		return internalError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}

// HandleListUsers returns every account projection. Reached only through
// the admin role gate.
func (h *AccountHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.accountService.ListUsers()
	if err != nil {
		return internalError(c, err)
	}

	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"users":   profiles,
	})
}
