package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/policy"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

const identityKey = "auth_identity"

// Gatekeeper runs before every handler. It resolves the caller through the
// constrained verification path and applies route admission. Page requests
// are redirected on denial; /api requests get 401 or 403.
//
// Roles are taken from the token as issued. A role changed after login is
// not seen until the next login; the gatekeeper does not consult the store.
type Gatekeeper struct {
	sessions *Sessions
	policy   *policy.Engine
	logger   *zap.Logger
}

// NewGatekeeper constructs middleware.
func NewGatekeeper(sessions *Sessions, engine *policy.Engine, logger *zap.Logger) *Gatekeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gatekeeper{sessions: sessions, policy: engine, logger: logger}
}

// Handle enforces route policy.
func (g *Gatekeeper) Handle(c *fiber.Ctx) error {
	kind := g.policy.ClassifyRequest(c.Method(), c.Path())

	var identity *policy.Identity
	if kind != policy.KindPublic {
		identity = g.resolve(c)
	}

	decision := g.policy.Decide(identity, kind)
	if decision.Allowed() {
		if identity != nil {
			c.Locals(identityKey, *identity)
		}
		return c.Next()
	}

	if isAPIPath(c.Path()) {
		if decision.Anonymous {
			return apperrors.NewUnauthorized("authentication required")
		}
		return apperrors.NewForbidden("forbidden")
	}
	return c.Redirect(decision.Location, fiber.StatusFound)
}

func (g *Gatekeeper) resolve(c *fiber.Ctx) *policy.Identity {
	token, ok := g.sessions.Read(c)
	if !ok {
		return nil
	}
	verdict := g.sessions.codec.VerifyEdge(token)
	g.sessions.record("edge", verdict)
	claims, ok := verdict.Claims()
	if !ok {
		g.logger.Debug("session rejected", zap.String("path", c.Path()), zap.String("reason", string(verdict.Reason())))
		return nil
	}
	identity := claims.Identity()
	return &identity
}

// IdentityFromContext retrieves the identity the gatekeeper admitted.
func IdentityFromContext(c *fiber.Ctx) (policy.Identity, bool) {
	identity, ok := c.Locals(identityKey).(policy.Identity)
	return identity, ok
}

func isAPIPath(p string) bool {
	p = strings.ToLower(p)
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
