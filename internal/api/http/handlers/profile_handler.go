package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/service"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	auth     *service.AuthService
	sessions *auth.Sessions
}

// NewProfileHandler constructs handler.
func NewProfileHandler(authService *service.AuthService, sessions *auth.Sessions) *ProfileHandler {
	return &ProfileHandler{auth: authService, sessions: sessions}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), caller.SubjectID)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}

// Update handles PATCH /api/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.auth.UpdateProfile(c.UserContext(), caller.SubjectID, req.Name)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, fiber.Map{"user": dto.NewUserResponse(user)})
}
