package auth

import (
	"encoding/base64"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace/internal/domain"
	"github.com/spec-kit/marketplace/internal/policy"
)

// Claims is the identity assertion carried by a session token.
type Claims struct {
	SubjectID string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the policy view of the claims.
func (c Claims) Identity() policy.Identity {
	return policy.Identity{SubjectID: c.SubjectID, Email: c.Email, Role: c.Role}
}

// Reason records why a token was rejected. It is only ever logged; callers
// see a single invalid outcome.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonMalformed    Reason = "malformed"
	ReasonSignature    Reason = "signature"
	ReasonExpired      Reason = "expired"
	ReasonNotYetValid  Reason = "not_yet_valid"
	ReasonInvalidShape Reason = "invalid_shape"
)

// Verdict is the result of verifying a token.
type Verdict struct {
	claims Claims
	reason Reason
}

func valid(c Claims) Verdict   { return Verdict{claims: c} }
func invalid(r Reason) Verdict { return Verdict{reason: r} }

// Valid reports whether the token was accepted.
func (v Verdict) Valid() bool { return v.reason == ReasonNone }

// Claims returns the verified claims and whether they are valid. Invalid
// verdicts never expose partial claims.
func (v Verdict) Claims() (Claims, bool) {
	if !v.Valid() {
		return Claims{}, false
	}
	return v.claims, true
}

// Reason returns the diagnostic rejection reason.
func (v Verdict) Reason() Reason { return v.reason }

// payload is the signed JSON body.
type payload struct {
	Subject   *string          `json:"sub"`
	Email     *string          `json:"email,omitempty"`
	Role      *string          `json:"role"`
	ID        string           `json:"jti,omitempty"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
}

// payload implements jwt.Claims so it can be signed by golang-jwt.
func (p payload) GetExpirationTime() (*jwt.NumericDate, error) { return p.ExpiresAt, nil }
func (p payload) GetIssuedAt() (*jwt.NumericDate, error)       { return p.IssuedAt, nil }
func (p payload) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (p payload) GetIssuer() (string, error)                   { return "", nil }
func (p payload) GetAudience() (jwt.ClaimStrings, error)       { return nil, nil }

func (p payload) GetSubject() (string, error) {
	if p.Subject == nil {
		return "", nil
	}
	return *p.Subject, nil
}

// issuedHeader is the encoded JWS header of every token Issue signs. Tokens
// with any other header are rejected before either library parses them.
var issuedHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// wellFormed is the shared precheck of both verification paths.
func wellFormed(raw string) bool {
	return isCompact(raw) && strings.HasPrefix(raw, issuedHeader+".")
}

// isCompact reports whether raw has exactly three non-empty base64url
// segments without padding. Both verification paths run this first so that
// encoding leniency of either primitive cannot change the outcome.
func isCompact(raw string) bool {
	segments, length := 0, 0
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == '.' {
			if length == 0 {
				return false
			}
			segments++
			length = 0
			continue
		}
		if !isBase64URL(ch) {
			return false
		}
		length++
	}
	return segments == 2 && length > 0
}

func isBase64URL(ch byte) bool {
	return ch >= 'A' && ch <= 'Z' ||
		ch >= 'a' && ch <= 'z' ||
		ch >= '0' && ch <= '9' ||
		ch == '-' || ch == '_'
}

// validatePayload decodes a signature-verified payload and applies the
// expiry window and shape checks. It is the only place claims are accepted.
func validatePayload(body []byte, now time.Time) Verdict {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return invalid(ReasonMalformed)
	}

	if p.ExpiresAt == nil || p.IssuedAt == nil {
		return invalid(ReasonInvalidShape)
	}
	if !now.Before(p.ExpiresAt.Time) {
		return invalid(ReasonExpired)
	}
	if now.Before(p.IssuedAt.Time) {
		return invalid(ReasonNotYetValid)
	}

	if p.Subject == nil || *p.Subject == "" || p.Role == nil {
		return invalid(ReasonInvalidShape)
	}
	role, ok := domain.ParseRole(*p.Role)
	if !ok {
		return invalid(ReasonInvalidShape)
	}

	c := Claims{
		SubjectID: *p.Subject,
		Role:      role,
		IssuedAt:  p.IssuedAt.Time.UTC(),
		ExpiresAt: p.ExpiresAt.Time.UTC(),
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	return valid(c)
}
