package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/service"
)

// AuthHandler exposes login, registration and session endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.Sessions
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, fiber.Map{
		"message": "account created",
		"user":    dto.NewUserResponse(user),
	})
}

// Login handles POST /api/auth/login. The token is only ever returned in
// the session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	_, token, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.sessions.Attach(c, token)
	return message(c, "login successful")
}

// Logout handles POST /api/logout. It only clears the cookie; the token
// value itself stays valid until it expires.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Clear(c)
	return message(c, "logged out")
}

// Me handles GET /api/me and never fails for a missing session.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := h.sessions.Identity(c)
	if !ok {
		return data(c, fiber.StatusOK, fiber.Map{"user": nil})
	}
	return data(c, fiber.StatusOK, fiber.Map{"user": dto.NewSessionUser(identity)})
}
