package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace/internal/domain"
)

const testSecret = "test-secret-0123456789-abcdefghijklmnop"

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, clock *testClock) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

// assertPathsAgree checks that both verification paths reach the same verdict.
func assertPathsAgree(t *testing.T, codec *Codec, token string) Verdict {
	t.Helper()
	full := codec.Verify(token)
	edge := codec.VerifyEdge(token)
	require.Equal(t, full.Valid(), edge.Valid(), "paths disagree on %q (full=%s edge=%s)", token, full.Reason(), edge.Reason())
	fullClaims, _ := full.Claims()
	edgeClaims, _ := edge.Claims()
	require.Equal(t, fullClaims, edgeClaims)
	return full
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

// signWithHeader signs claims under a hand-written JWS header.
func signWithHeader(t *testing.T, header string, claims jwt.MapClaims) string {
	t.Helper()
	body, err := json.Marshal(claims)
	require.NoError(t, err)
	input := base64.RawURLEncoding.EncodeToString([]byte(header)) + "." + base64.RawURLEncoding.EncodeToString(body)
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(input))
	return input + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestNewCodecRejectsMissingSecret(t *testing.T) {
	_, err := NewCodec("")
	require.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewCodec("too-short")
	require.ErrorIs(t, err, ErrShortSecret)
}

func TestIssueRejectsIncompleteIdentity(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: testNow})

	_, _, err := codec.Issue(Claims{Role: domain.RoleBuyer})
	require.Error(t, err)

	_, _, err = codec.Issue(Claims{SubjectID: "u1", Role: "ROOT"})
	require.Error(t, err)
}

func TestRoundTripBothPaths(t *testing.T) {
	clock := &testClock{now: testNow}
	codec := newTestCodec(t, clock)

	for _, role := range domain.Roles {
		t.Run(string(role), func(t *testing.T) {
			token, issued, err := codec.Issue(Claims{SubjectID: "user-" + string(role), Email: "a@example.com", Role: role})
			require.NoError(t, err)
			assert.Equal(t, testNow, issued.IssuedAt)
			assert.Equal(t, testNow.Add(SessionTTL), issued.ExpiresAt)

			for _, verify := range []func(string) Verdict{codec.Verify, codec.VerifyEdge} {
				verdict := verify(token)
				require.True(t, verdict.Valid(), "reason %s", verdict.Reason())
				claims, ok := verdict.Claims()
				require.True(t, ok)
				assert.Equal(t, issued, claims)
			}
		})
	}
}

func TestVerifyExpiryWindow(t *testing.T) {
	clock := &testClock{now: testNow}
	codec := newTestCodec(t, clock)
	token, _, err := codec.Issue(Claims{SubjectID: "u1", Role: domain.RoleSeller})
	require.NoError(t, err)

	tests := []struct {
		name   string
		now    time.Time
		valid  bool
		reason Reason
	}{
		{"at issue", testNow, true, ReasonNone},
		{"one second before expiry", testNow.Add(SessionTTL - time.Second), true, ReasonNone},
		{"exactly at expiry", testNow.Add(SessionTTL), false, ReasonExpired},
		{"after expiry", testNow.Add(SessionTTL + time.Hour), false, ReasonExpired},
		{"before issue", testNow.Add(-time.Minute), false, ReasonNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = tt.now
			verdict := assertPathsAgree(t, codec, token)
			assert.Equal(t, tt.valid, verdict.Valid())
			assert.Equal(t, tt.reason, codec.VerifyEdge(token).Reason())
		})
	}
}

func TestVerifyRejectsCraftedTokens(t *testing.T) {
	clock := &testClock{now: testNow}
	codec := newTestCodec(t, clock)
	iat := testNow.Unix()
	exp := testNow.Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"four segments", "aaaa.bbbb.cccc.dddd"},
		{"empty signature", "eyJhbGciOiJIUzI1NiJ9.e30."},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, []byte("another-secret-0123456789-abcdefgh"),
			jwt.MapClaims{"sub": "u1", "role": "ADMIN", "iat": iat, "exp": exp})},
		{"other algorithm", signRaw(t, jwt.SigningMethodHS512, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "ADMIN", "iat": iat, "exp": exp})},
		{"missing subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"role": "ADMIN", "iat": iat, "exp": exp})},
		{"empty subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "", "role": "ADMIN", "iat": iat, "exp": exp})},
		{"missing role", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "iat": iat, "exp": exp})},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "SUPERUSER", "iat": iat, "exp": exp})},
		{"lowercase role", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "admin", "iat": iat, "exp": exp})},
		{"numeric role", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": 3, "iat": iat, "exp": exp})},
		{"numeric subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": 42, "role": "BUYER", "iat": iat, "exp": exp})},
		{"missing expiry", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "BUYER", "iat": iat})},
		{"missing issued at", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "BUYER", "exp": exp})},
		{"expired", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.MapClaims{"sub": "u1", "role": "BUYER", "iat": iat - 7200, "exp": iat - 3600})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := assertPathsAgree(t, codec, tt.token)
			assert.False(t, verdict.Valid())
			claims, ok := verdict.Claims()
			assert.False(t, ok)
			assert.Equal(t, Claims{}, claims)
		})
	}
}

func TestVerifyRejectsEncodingVariants(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: testNow})
	token, _, err := codec.Issue(Claims{SubjectID: "u1", Role: domain.RoleBuyer})
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	variants := []string{
		token + "=",
		token + "==",
		parts[0] + "=." + parts[1] + "." + parts[2],
		" " + token,
		token + " ",
		token + ".",
		"." + token,
		strings.ReplaceAll(token, "-", "+"),
		parts[1] + "." + parts[0] + "." + parts[2],
		parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-4],
	}
	for _, v := range variants {
		if v == token {
			continue
		}
		verdict := assertPathsAgree(t, codec, v)
		assert.False(t, verdict.Valid(), "variant %q", v)
	}
}

func TestVerifyPathsAgreeOnMutations(t *testing.T) {
	clock := &testClock{now: testNow}
	codec := newTestCodec(t, clock)
	token, _, err := codec.Issue(Claims{SubjectID: "seller-1", Email: "s@example.com", Role: domain.RoleSeller})
	require.NoError(t, err)

	alphabet := []byte("AZaz09-_.+/=")
	for i := 0; i < len(token); i++ {
		for _, ch := range alphabet {
			if token[i] == ch {
				continue
			}
			mutated := token[:i] + string(ch) + token[i+1:]
			assertPathsAgree(t, codec, mutated)
		}
	}
	for i := 0; i < len(token); i++ {
		assertPathsAgree(t, codec, token[:i])
	}

	claims := jwt.MapClaims{"sub": "u1", "role": "ADMIN", "iat": testNow.Unix(), "exp": testNow.Add(time.Hour).Unix()}
	headers := []struct {
		name   string
		header string
	}{
		{"crit registered", `{"alg":"HS256","typ":"JWT","crit":["exp"]}`},
		{"crit unknown", `{"alg":"HS256","typ":"JWT","crit":["x-policy"],"x-policy":1}`},
		{"unencoded payload", `{"alg":"HS256","b64":false,"crit":["b64"]}`},
		{"embedded jwk", `{"alg":"HS256","typ":"JWT","jwk":{"kty":"oct","k":"c2VjcmV0"}}`},
		{"duplicate alg", `{"alg":"none","alg":"HS256","typ":"JWT"}`},
		{"alg none", `{"alg":"none","typ":"JWT"}`},
		{"key id", `{"alg":"HS256","kid":"k1","typ":"JWT"}`},
		{"no typ", `{"alg":"HS256"}`},
		{"lowercase typ", `{"alg":"HS256","typ":"jwt"}`},
		{"reordered", `{"typ":"JWT","alg":"HS256"}`},
		{"whitespace", `{"alg": "HS256", "typ": "JWT"}`},
		{"not json", `alg=HS256`},
	}
	for _, tt := range headers {
		t.Run(tt.name, func(t *testing.T) {
			verdict := assertPathsAgree(t, codec, signWithHeader(t, tt.header, claims))
			assert.False(t, verdict.Valid())
		})
	}

	canonical := signWithHeader(t, `{"alg":"HS256","typ":"JWT"}`, claims)
	assert.True(t, assertPathsAgree(t, codec, canonical).Valid())
}

func TestIssueUsesCanonicalHeader(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: testNow})
	token, _, err := codec.Issue(Claims{SubjectID: "u1", Role: domain.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, issuedHeader, strings.Split(token, ".")[0])
}

func TestTamperedPayloadIsInvalid(t *testing.T) {
	codec := newTestCodec(t, &testClock{now: testNow})
	buyerToken, _, err := codec.Issue(Claims{SubjectID: "u1", Role: domain.RoleBuyer})
	require.NoError(t, err)
	adminToken, _, err := codec.Issue(Claims{SubjectID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	buyerParts := strings.Split(buyerToken, ".")
	adminParts := strings.Split(adminToken, ".")
	forged := buyerParts[0] + "." + adminParts[1] + "." + buyerParts[2]

	verdict := assertPathsAgree(t, codec, forged)
	assert.False(t, verdict.Valid())
	assert.Equal(t, ReasonSignature, codec.VerifyEdge(forged).Reason())
}

func TestCodecsWithDifferentSecretsDisagree(t *testing.T) {
	clock := &testClock{now: testNow}
	issuer := newTestCodec(t, clock)
	other, err := NewCodec("a-completely-different-secret-value-000", WithClock(clock.Now))
	require.NoError(t, err)

	token, _, err := issuer.Issue(Claims{SubjectID: "u1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	assert.False(t, other.Verify(token).Valid())
	assert.False(t, other.VerifyEdge(token).Valid())
}
