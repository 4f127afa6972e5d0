package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// CredentialVerifier compares raw passwords against bcrypt hashes.
type CredentialVerifier struct {
	cost int
}

// NewCredentialVerifier returns a verifier hashing at cost; zero selects bcrypt.DefaultCost.
func NewCredentialVerifier(cost int) (*CredentialVerifier, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", domain.ErrConfiguration, cost)
	}
	return &CredentialVerifier{cost: cost}, nil
}

// Matches reports whether raw hashes to storedHash. bcrypt compares digests in
// constant time.
func (v *CredentialVerifier) Matches(raw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw)) == nil
}

// Hash derives a salted hash for storage at registration time.
func (v *CredentialVerifier) Hash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), v.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
