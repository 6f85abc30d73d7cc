package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/service"
)

// AdminHandler exposes account and order management.
type AdminHandler struct {
	admin    *service.AdminService
	sessions *auth.Sessions
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, sessions *auth.Sessions) *AdminHandler {
	return &AdminHandler{admin: admin, sessions: sessions}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	users, err := h.admin.ListUsers(c.UserContext(), caller)
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return data(c, fiber.StatusOK, fiber.Map{"users": out})
}

// ChangeRole handles PATCH /api/admin/users/:id.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.RoleUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.admin.ChangeRole(c.UserContext(), caller, c.Params("id"), domain.Role(req.Role)); err != nil {
		return err
	}
	return message(c, "role updated successfully")
}

// UpdateOrder handles PATCH /api/admin/orders/:id.
func (h *AdminHandler) UpdateOrder(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.OrderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.admin.UpdateOrderStatus(c.UserContext(), caller, c.Params("id"), domain.OrderStatus(req.Status)); err != nil {
		return err
	}
	return message(c, "order status updated")
}

// DeleteOrder handles DELETE /api/admin/orders/:id.
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteOrder(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return message(c, "order deleted successfully")
}
