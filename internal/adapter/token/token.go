package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Compile-time check: Source implements domain.TokenSource.
var _ domain.TokenSource = (*Source)(nil)

// scheme is the Authorization scheme vendor clients have always sent.
const scheme = "JWT "

// vendorCollection marks tokens issued to vendor-typed subjects; the
// extractor only honors this kind, so an admin token presented on a
// vendor endpoint resolves to no subject.
const vendorCollection = "vendors"

type claims struct {
	Collection string `json:"collection"`
	jwt.RegisteredClaims
}

// Source issues and verifies HS256-signed session tokens. Unlike the
// raw payload decoding this replaces, ExtractSubject only trusts a
// token whose signature and expiry verify against the shared secret.
type Source struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New creates a token source with the given signing secret and lifetime.
func New(secret string, ttl time.Duration) *Source {
	return &Source{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a session token for the vendor.
func (s *Source) Issue(vendor domain.Vendor) (string, error) {
	now := s.now().UTC()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Collection: vendorCollection,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   vendor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ExtractSubject returns the vendor id carried by a verified
// "JWT <token>" Authorization header. A missing header, another
// scheme, a token that fails verification, or a token scoped to a
// non-vendor collection all yield "": unauthenticated, not an error.
func (s *Source) ExtractSubject(authorization string) string {
	if !strings.HasPrefix(authorization, scheme) {
		return ""
	}
	raw := authorization[len(scheme):]

	var c claims
	parsed, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ""
	}
	if c.Collection != vendorCollection {
		return ""
	}

	return c.Subject
}
