package http

import (
	"context"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/marketplace/internal/auth"
	"github.com/spec-kit/marketplace/internal/config"
	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/observability"
	"github.com/spec-kit/marketplace/internal/policy"
	"github.com/spec-kit/marketplace/internal/repository/memrepo"
	"github.com/spec-kit/marketplace/internal/service"
)

const e2eSecret = "e2e-secret-value-0123456789-abcdefghij"

type harness struct {
	t       *testing.T
	app     *fiber.App
	store   *memrepo.Store
	metrics *observability.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memrepo.New()
	metrics := observability.NewMetrics()

	codec, err := auth.NewCodec(e2eSecret)
	require.NoError(t, err)
	engine, err := policy.NewEngine(policy.WithRecorder(metrics))
	require.NoError(t, err)
	sessions := auth.NewSessions(auth.SessionsConfig{Codec: codec, Recorder: metrics})

	authService, err := service.NewAuthService(config.AuthConfig{LoginMaxAttempts: 5}, service.AuthDependencies{
		Users:    store.Users(),
		Verifier: auth.NewBcryptVerifier(bcrypt.MinCost, nil),
		Codec:    codec,
	})
	require.NoError(t, err)

	app := NewServer(ServerDependencies{
		Config:   config.AppConfig{Name: "marketplace-test", Version: "test"},
		Metrics:  metrics,
		Sessions: sessions,
		Policy:   engine,
		Auth:     authService,
		Products: service.NewProductService(store.Products(), engine, nil),
		Orders:   service.NewOrderService(store.Orders(), store.Products(), engine, nil, nil),
		Admin:    service.NewAdminService(store.Users(), store.Orders(), engine, nil, nil),
	})
	return &harness{t: t, app: app, store: store, metrics: metrics}
}

type result struct {
	status   int
	location string
	cookie   *stdhttp.Cookie
	body     map[string]any
}

func (h *harness) do(method, target, token string, payload any) result {
	h.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(h.t, err)
		body = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&stdhttp.Cookie{Name: auth.CookieName, Value: token})
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	out := result{status: resp.StatusCode, location: resp.Header.Get("Location")}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			out.cookie = c
		}
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(h.t, json.Unmarshal(raw, &out.body))
	}
	return out
}

// account registers through the API, applies role directly in the store and
// logs in, returning the session cookie value.
func (h *harness) account(email string, role domain.Role) (string, string) {
	h.t.Helper()
	res := h.do(fiber.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(h.t, fiber.StatusCreated, res.status)

	user, err := h.store.Users().GetByEmail(context.Background(), email)
	require.NoError(h.t, err)
	if role != domain.RoleBuyer {
		require.NoError(h.t, h.store.Users().UpdateRole(context.Background(), user.ID, role))
	}

	res = h.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(h.t, fiber.StatusOK, res.status)
	require.NotNil(h.t, res.cookie)
	return res.cookie.Value, user.ID
}

func errorCode(res result) string {
	e, _ := res.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestSellerRedirectedFromAdminArea(t *testing.T) {
	h := newHarness(t)
	seller, _ := h.account("seller@example.com", domain.RoleSeller)

	res := h.do(fiber.MethodGet, "/dashboard/admin/users", seller, nil)
	assert.Equal(t, fiber.StatusFound, res.status)
	assert.Equal(t, "/dashboard/seller", res.location)
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	h := newHarness(t)

	res := h.do(fiber.MethodGet, "/dashboard/buyer", "", nil)
	assert.Equal(t, fiber.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)

	res = h.do(fiber.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(res))
}

func TestLoginSetsCookieAndFailureIsGeneric(t *testing.T) {
	h := newHarness(t)
	h.account("user@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": "user@example.com", "password": "password123"})
	require.Equal(t, fiber.StatusOK, res.status)
	require.NotNil(t, res.cookie)
	assert.True(t, res.cookie.HttpOnly)
	assert.Equal(t, "/", res.cookie.Path)
	assert.Equal(t, 604800, res.cookie.MaxAge)
	assert.NotContains(t, res.body, "token")

	wrong := h.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": "user@example.com", "password": "nope"})
	unknown := h.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": "ghost@example.com", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, wrong.status)
	assert.Equal(t, wrong.body, unknown.body)
	assert.Nil(t, wrong.cookie)
}

func TestMeReflectsSession(t *testing.T) {
	h := newHarness(t)
	token, id := h.account("me@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodGet, "/api/me", "", nil)
	require.Equal(t, fiber.StatusOK, res.status)
	assert.Nil(t, res.body["data"].(map[string]any)["user"])

	res = h.do(fiber.MethodGet, "/api/me", token, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	user := res.body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, id, user["id"])
	assert.Equal(t, "BUYER", user["role"])
}

func TestSellerCannotDeleteForeignProduct(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.account("alice@example.com", domain.RoleSeller)
	mallory, _ := h.account("mallory@example.com", domain.RoleSeller)

	created := h.do(fiber.MethodPost, "/api/products", alice, map[string]any{
		"title": "Desk", "description": "Oak desk", "price": 120.5, "file_url": "https://files.example.com/desk.png",
	})
	require.Equal(t, fiber.StatusCreated, created.status)
	productID := created.body["data"].(map[string]any)["product"].(map[string]any)["id"].(string)

	foreign := h.do(fiber.MethodDelete, "/api/products/"+productID, mallory, nil)
	missing := h.do(fiber.MethodDelete, "/api/products/00000000-0000-0000-0000-000000000000", mallory, nil)
	assert.Equal(t, fiber.StatusForbidden, foreign.status)
	assert.Equal(t, foreign.body, missing.body)

	_, err := h.store.Products().GetByID(context.Background(), productID)
	assert.NoError(t, err, "product must remain")
}

func TestAdminDeletesAnyProduct(t *testing.T) {
	h := newHarness(t)
	seller, _ := h.account("seller@example.com", domain.RoleSeller)
	admin, _ := h.account("admin@example.com", domain.RoleAdmin)

	created := h.do(fiber.MethodPost, "/api/products", seller, map[string]any{
		"title": "Lamp", "description": "Brass lamp", "price": 30, "file_url": "https://files.example.com/lamp.png",
	})
	require.Equal(t, fiber.StatusCreated, created.status)
	productID := created.body["data"].(map[string]any)["product"].(map[string]any)["id"].(string)

	res := h.do(fiber.MethodDelete, "/api/admin/products/"+productID, admin, nil)
	assert.Equal(t, fiber.StatusOK, res.status)

	_, err := h.store.Products().GetByID(context.Background(), productID)
	assert.Error(t, err)
}

func TestBuyerCannotCreateProducts(t *testing.T) {
	h := newHarness(t)
	buyer, _ := h.account("buyer@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodPost, "/api/products", buyer, map[string]any{
		"title": "Nope", "description": "x", "price": 1, "file_url": "https://files.example.com/x.png",
	})
	assert.Equal(t, fiber.StatusForbidden, res.status)
}

func TestOrderFlow(t *testing.T) {
	h := newHarness(t)
	seller, _ := h.account("seller@example.com", domain.RoleSeller)
	buyer, _ := h.account("buyer@example.com", domain.RoleBuyer)
	admin, _ := h.account("admin@example.com", domain.RoleAdmin)

	created := h.do(fiber.MethodPost, "/api/products", seller, map[string]any{
		"title": "Chair", "description": "Pine chair", "price": 45, "file_url": "https://files.example.com/chair.png",
	})
	require.Equal(t, fiber.StatusCreated, created.status)
	productID := created.body["data"].(map[string]any)["product"].(map[string]any)["id"].(string)

	res := h.do(fiber.MethodPost, "/api/orders", buyer, map[string]string{"product_id": productID})
	require.Equal(t, fiber.StatusCreated, res.status)
	orderID := res.body["data"].(map[string]any)["order"].(map[string]any)["id"].(string)

	res = h.do(fiber.MethodPost, "/api/orders", buyer, map[string]string{"product_id": productID})
	assert.Equal(t, fiber.StatusConflict, res.status)

	res = h.do(fiber.MethodPost, "/api/orders", seller, map[string]string{"product_id": productID})
	assert.Equal(t, fiber.StatusForbidden, res.status, "ordering is buyer only")

	res = h.do(fiber.MethodPatch, "/api/admin/orders/"+orderID, buyer, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, fiber.StatusForbidden, res.status)

	res = h.do(fiber.MethodPatch, "/api/admin/orders/"+orderID, admin, map[string]string{"status": "SHIPPED"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)

	res = h.do(fiber.MethodPatch, "/api/admin/orders/"+orderID, admin, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, fiber.StatusOK, res.status)

	res = h.do(fiber.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	orders := res.body["data"].(map[string]any)["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, "COMPLETED", orders[0].(map[string]any)["status"])
}

func TestCapturedCookieSurvivesLogout(t *testing.T) {
	h := newHarness(t)
	token, _ := h.account("buyer@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodPost, "/api/logout", token, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	require.NotNil(t, res.cookie)
	assert.Empty(t, res.cookie.Value)

	res = h.do(fiber.MethodGet, "/dashboard/buyer", token, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
}

func TestRoleChangeWaitsForNextLogin(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.account("admin@example.com", domain.RoleAdmin)
	oldToken, userID := h.account("joe@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodPatch, "/api/admin/users/"+userID, admin, map[string]string{"role": "SELLER"})
	require.Equal(t, fiber.StatusOK, res.status)

	res = h.do(fiber.MethodGet, "/dashboard/seller", oldToken, nil)
	assert.Equal(t, fiber.StatusFound, res.status)
	assert.Equal(t, "/dashboard/buyer", res.location)

	login := h.do(fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": "joe@example.com", "password": "password123"})
	require.NotNil(t, login.cookie)
	res = h.do(fiber.MethodGet, "/dashboard/seller", login.cookie.Value, nil)
	assert.Equal(t, fiber.StatusOK, res.status)
}

func TestDashboardLandingAndNavigation(t *testing.T) {
	h := newHarness(t)
	seller, _ := h.account("seller@example.com", domain.RoleSeller)

	res := h.do(fiber.MethodGet, "/dashboard", seller, nil)
	assert.Equal(t, fiber.StatusFound, res.status)
	assert.Equal(t, "/dashboard/seller", res.location)

	res = h.do(fiber.MethodGet, "/dashboard/seller", seller, nil)
	require.Equal(t, fiber.StatusOK, res.status)
	nav := res.body["data"].(map[string]any)["nav"].([]any)
	hrefs := make([]string, 0, len(nav))
	for _, item := range nav {
		hrefs = append(hrefs, item.(map[string]any)["href"].(string))
	}
	assert.Contains(t, hrefs, "/dashboard/seller")
	assert.Contains(t, hrefs, "/dashboard/buyer")
	assert.NotContains(t, hrefs, "/dashboard/buyer/cart")
	assert.NotContains(t, hrefs, "/dashboard/admin/users")
}

func TestUnknownRoutesAndErrors(t *testing.T) {
	h := newHarness(t)
	buyer, _ := h.account("buyer@example.com", domain.RoleBuyer)

	res := h.do(fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusFound, res.status)
	assert.Equal(t, "/login", res.location)

	res = h.do(fiber.MethodGet, "/api/nowhere", buyer, nil)
	assert.Equal(t, fiber.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", errorCode(res))

	res = h.do(fiber.MethodPost, "/api/auth/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(res))
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, fiber.StatusOK, h.do(fiber.MethodGet, "/health/live", "", nil).status)
	assert.Equal(t, fiber.StatusOK, h.do(fiber.MethodGet, "/health/ready", "", nil).status)
	h.do(fiber.MethodGet, "/dashboard/admin", "", nil)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `authz_decisions_total{kind="ADMIN_ONLY",outcome="REDIRECT"}`)
}
