package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/service"
)

// OrdersHandler exposes purchase request endpoints.
type OrdersHandler struct {
	orders   *service.OrderService
	sessions *auth.Sessions
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService, sessions *auth.Sessions) *OrdersHandler {
	return &OrdersHandler{orders: orders, sessions: sessions}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.OrderCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.orders.Request(c.UserContext(), caller, req.ProductID)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, fiber.Map{
		"message": "product requested successfully",
		"order":   dto.NewOrderResponse(order),
	})
}

// List handles GET /api/orders; also serves GET /api/admin/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.List(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, fiber.Map{"orders": dto.NewOrderList(orders)})
}
