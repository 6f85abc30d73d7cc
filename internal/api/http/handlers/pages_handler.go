package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace/internal/api/dto"
	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/policy"
)

// NavItem is one dashboard navigation link.
type NavItem struct {
	Href  string `json:"href"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
}

var navigation = []NavItem{
	{Href: "/dashboard/buyer", Label: "Browse"},
	{Href: "/dashboard/buyer/cart", Label: "Cart"},
	{Href: "/dashboard/seller", Label: "Seller Dashboard"},
	{Href: "/dashboard/admin/users", Label: "Users", Group: "Admin"},
	{Href: "/dashboard/admin/products", Label: "Products", Group: "Admin"},
	{Href: "/dashboard/admin/orders", Label: "Orders", Group: "Admin"},
	{Href: "/dashboard/profile", Label: "Profile"},
}

// PagesHandler serves page descriptors. Rendering is left to the client;
// the server decides which page a caller may see and what it links to.
type PagesHandler struct {
	sessions *auth.Sessions
	policy   *policy.Engine
}

// NewPagesHandler constructs handler.
func NewPagesHandler(sessions *auth.Sessions, engine *policy.Engine) *PagesHandler {
	return &PagesHandler{sessions: sessions, policy: engine}
}

// Public serves the unauthenticated pages.
func (h *PagesHandler) Public(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := fiber.Map{"page": name}
		if identity, ok := h.sessions.Identity(c); ok {
			page["user"] = dto.NewSessionUser(identity)
		}
		return data(c, fiber.StatusOK, page)
	}
}

// Dashboard handles GET /dashboard by sending the caller to their area.
func (h *PagesHandler) Dashboard(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return c.Redirect(policy.LoginPath, fiber.StatusFound)
	}
	return c.Redirect(policy.LandingPath(caller.Role), fiber.StatusFound)
}

// Area handles every other /dashboard page.
func (h *PagesHandler) Area(c *fiber.Ctx) error {
	caller, err := h.sessions.Authenticate(c)
	if err != nil {
		return c.Redirect(policy.LoginPath, fiber.StatusFound)
	}
	return data(c, fiber.StatusOK, fiber.Map{
		"page": strings.TrimPrefix(strings.ToLower(c.Path()), "/"),
		"user": dto.NewSessionUser(caller),
		"nav":  h.Navigation(caller),
	})
}

// Navigation returns the links the caller would be admitted to.
func (h *PagesHandler) Navigation(caller policy.Identity) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if h.policy.Admit(caller.Role, h.policy.Classify(item.Href)) == policy.Allow {
			items = append(items, item)
		}
	}
	return items
}
