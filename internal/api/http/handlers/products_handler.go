package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/service"
)

// ProductsHandler exposes listing endpoints. The admin product routes use
// the same handler; ownership lets ADMIN act on any listing.
type ProductsHandler struct {
	products *service.ProductService
	sessions *auth.Sessions
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, sessions *auth.Sessions) *ProductsHandler {
	return &ProductsHandler{products: products, sessions: sessions}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	products, err := h.products.List(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, fiber.Map{"products": dto.NewProductList(products)})
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.ProductCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), caller, req.Input())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, fiber.Map{"product": dto.NewProductResponse(product)})
}

// Update handles PATCH /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	var req dto.ProductUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), caller, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, fiber.Map{"product": dto.NewProductResponse(product)})
}

// Delete handles DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return message(c, "product deleted")
}
