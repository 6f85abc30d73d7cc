package auth

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier wraps one-way password hashing.
type CredentialVerifier interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	cost   int
	logger *zap.Logger
}

// NewBcryptVerifier builds a verifier. Out of range costs fall back to bcrypt.DefaultCost.
func NewBcryptVerifier(cost int, logger *zap.Logger) *BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BcryptVerifier{cost: cost, logger: logger}
}

// Hash hashes a plaintext password with the configured cost.
func (v *BcryptVerifier) Hash(plain string) (string, error) {
	return HashPassword(plain, v.cost)
}

// Verify reports whether plain matches hashed. A mismatch is false; any other
// bcrypt failure is also false and logged without the inputs.
func (v *BcryptVerifier) Verify(plain, hashed string) bool {
	err := ComparePassword(hashed, plain)
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		v.logger.Error("credential verifier fault", zap.String("error_type", faultKind(err)))
	}
	return false
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return "hash_too_short"
	case errors.As(err, new(bcrypt.InvalidHashPrefixError)):
		return "invalid_hash_prefix"
	case errors.As(err, new(bcrypt.InvalidCostError)):
		return "invalid_cost"
	case errors.As(err, new(bcrypt.HashVersionTooNewError)):
		return "hash_version_too_new"
	}
	return "unknown"
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
