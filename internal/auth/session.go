package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace/internal/policy"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

// CookieName is the only place a session token is carried.
const CookieName = "token"

const expiredCookieDate = "Thu, 01 Jan 1970 00:00:00 GMT"

// VerificationRecorder receives one call per token verification.
type VerificationRecorder interface {
	RecordVerification(path string, valid bool)
}

// Sessions reads and writes the session cookie and resolves identities from it.
type Sessions struct {
	codec    *Codec
	secure   bool
	logger   *zap.Logger
	recorder VerificationRecorder
}

// SessionsConfig bundles Sessions dependencies.
type SessionsConfig struct {
	Codec *Codec
	// Secure sets the cookie Secure attribute; enabled in production.
	Secure   bool
	Logger   *zap.Logger
	Recorder VerificationRecorder
}

// NewSessions constructs the session store adapter.
func NewSessions(cfg SessionsConfig) *Sessions {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{codec: cfg.Codec, secure: cfg.Secure, logger: logger, recorder: cfg.Recorder}
}

// Codec exposes the token codec.
func (s *Sessions) Codec() *Codec {
	return s.codec
}

// Attach stores token in the session cookie.
func (s *Sessions) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear overwrites the session cookie with an empty value and Max-Age=0.
// fiber.Cookie drops a zero Max-Age, so the header is written directly.
func (s *Sessions) Clear(c *fiber.Ctx) {
	cookie := CookieName + "=; Path=/; Expires=" + expiredCookieDate + "; Max-Age=0; HttpOnly; SameSite=Lax"
	if s.secure {
		cookie += "; Secure"
	}
	c.Response().Header.Add(fiber.HeaderSetCookie, cookie)
}

// Read returns the raw session token, if any.
func (s *Sessions) Read(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(CookieName)
	return token, token != ""
}

// Identity resolves the caller through the full verification path. It never
// fails; a missing or invalid session yields false.
func (s *Sessions) Identity(c *fiber.Ctx) (policy.Identity, bool) {
	token, ok := s.Read(c)
	if !ok {
		return policy.Identity{}, false
	}
	verdict := s.codec.Verify(token)
	s.record("full", verdict)
	claims, ok := verdict.Claims()
	if !ok {
		s.logger.Debug("session rejected", zap.String("path", c.Path()), zap.String("reason", string(verdict.Reason())))
		return policy.Identity{}, false
	}
	return claims.Identity(), true
}

// Authenticate re-verifies the session inside a handler. It must agree with
// the identity the gatekeeper forwarded, if one was forwarded.
func (s *Sessions) Authenticate(c *fiber.Ctx) (policy.Identity, error) {
	identity, ok := s.Identity(c)
	if !ok {
		return policy.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	if forwarded, ok := IdentityFromContext(c); ok && forwarded != identity {
		s.logger.Warn("forwarded identity mismatch", zap.String("path", c.Path()))
		return policy.Identity{}, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}

func (s *Sessions) record(path string, verdict Verdict) {
	if s.recorder != nil {
		s.recorder.RecordVerification(path, verdict.Valid())
	}
}
