package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Compile-time check: Hasher implements domain.PasswordHasher.
var _ domain.PasswordHasher = (*Hasher)(nil)

// Hasher hashes and verifies credentials with bcrypt.
type Hasher struct {
	cost int
}

// New creates a hasher with bcrypt's default cost.
func New() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash derives a bcrypt hash from the plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(out), nil
}

// Compare reports whether password matches hash. Any bcrypt failure,
// mismatch or malformed hash, comes back as a non-nil error.
func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
