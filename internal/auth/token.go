package auth

import (
	"errors"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is the fixed lifetime of a session token and its cookie.
const SessionTTL = 7 * 24 * time.Hour

// MinSecretBytes is the shortest accepted HS256 secret, the size of the
// SHA-256 output.
const MinSecretBytes = 32

var (
	// ErrEmptySecret is returned when a codec is built without a signing secret.
	ErrEmptySecret = errors.New("token signing secret is empty")
	// ErrShortSecret is returned for secrets below MinSecretBytes.
	ErrShortSecret = errors.New("token signing secret is too short")
)

var fullParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithoutClaimsValidation(),
)

var edgeAlgorithms = []jose.SignatureAlgorithm{jose.HS256}

// Codec issues and verifies HS256 session tokens.
//
// Verify is the full path used inside handlers and is backed by golang-jwt.
// VerifyEdge is the constrained path used by the gatekeeper and is backed by
// go-jose. Both share the compact-form and header check, the payload
// predicate and the clock, so they reach the same verdict for every token.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a codec for the given secret.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) < MinSecretBytes {
		return nil, ErrShortSecret
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for the principal in claims. IssuedAt and ExpiresAt
// are assigned here; the returned Claims are exactly what Verify yields.
func (c *Codec) Issue(claims Claims) (string, Claims, error) {
	if claims.SubjectID == "" {
		return "", Claims{}, errors.New("issue token: empty subject")
	}
	if !claims.Role.Valid() {
		return "", Claims{}, errors.New("issue token: invalid role")
	}

	issuedAt := jwt.NewNumericDate(c.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(SessionTTL))
	subject := claims.SubjectID
	email := claims.Email
	role := string(claims.Role)

	body := payload{
		Subject:   &subject,
		Email:     &email,
		Role:      &role,
		ID:        uuid.NewString(),
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, body).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}

	claims.IssuedAt = issuedAt.Time.UTC()
	claims.ExpiresAt = expiresAt.Time.UTC()
	return token, claims, nil
}

// Verify checks a token through golang-jwt.
func (c *Codec) Verify(raw string) Verdict {
	if !wellFormed(raw) {
		return invalid(ReasonMalformed)
	}
	if _, err := fullParser.Parse(raw, c.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return invalid(ReasonMalformed)
		}
		return invalid(ReasonSignature)
	}
	body, err := fullParser.DecodeSegment(raw[strings.IndexByte(raw, '.')+1 : strings.LastIndexByte(raw, '.')])
	if err != nil {
		return invalid(ReasonMalformed)
	}
	return validatePayload(body, c.now())
}

// VerifyEdge checks a token through go-jose's compact JWS verifier.
func (c *Codec) VerifyEdge(raw string) Verdict {
	if !wellFormed(raw) {
		return invalid(ReasonMalformed)
	}
	sig, err := jose.ParseSignedCompact(raw, edgeAlgorithms)
	if err != nil {
		return invalid(ReasonMalformed)
	}
	body, err := sig.Verify(c.secret)
	if err != nil {
		return invalid(ReasonSignature)
	}
	return validatePayload(body, c.now())
}

func (c *Codec) keyFunc(*jwt.Token) (interface{}, error) {
	return c.secret, nil
}
