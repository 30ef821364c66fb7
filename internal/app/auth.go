package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Session is the result of a successful authentication: a signed
// bearer token and the sanitized vendor it belongs to.
type Session struct {
	Token  string
	Vendor domain.Summary
}

// AuthService is the credential gate in front of vendor sessions.
// Lifecycle state is checked independently of the password so that a
// pending or rejected account is reported as such even when the
// credentials are correct.
type AuthService struct {
	repo   domain.VendorRepository
	hasher domain.PasswordHasher
	tokens domain.TokenSource
}

// NewAuthService creates a credential gate with the given adapters.
func NewAuthService(repo domain.VendorRepository, hasher domain.PasswordHasher, tokens domain.TokenSource) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// Authenticate verifies a vendor's credentials and lifecycle state.
//
// An unknown email returns ErrVendorNotFound, distinct from the
// invalid-credentials failure for existing accounts. The state gate
// runs twice: once before the password check, and again on a fresh
// read afterwards, so a decision landing mid-request cannot hand an
// approved session to a vendor that is no longer approved.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (Session, error) {
	if err := requireField("email", email); err != nil {
		return Session{}, err
	}
	if err := requireField("password", password); err != nil {
		return Session{}, err
	}

	vendor, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}

	if err := gate(vendor.Status); err != nil {
		return Session{}, err
	}

	if err := s.hasher.Compare(vendor.PasswordHash, password); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	vendor, err = s.repo.GetByID(ctx, vendor.ID)
	if err != nil {
		return Session{}, err
	}
	if err := gate(vendor.Status); err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(vendor)
	if err != nil {
		return Session{}, fmt.Errorf("issuing token: %w", err)
	}

	return Session{Token: token, Vendor: vendor.Summarize()}, nil
}

// ExtractActor resolves the actor behind an Authorization header. A
// header that does not verify yields an anonymous actor, not an error.
func (s *AuthService) ExtractActor(authorization string) domain.Actor {
	subject := s.tokens.ExtractSubject(authorization)
	if subject == "" {
		return domain.Actor{}
	}
	return domain.Actor{ID: subject, Kind: domain.ActorVendor}
}

// gate maps a non-approved status to its denial error.
func gate(status domain.Status) error {
	if status == domain.StatusApproved {
		return nil
	}
	return &domain.AccountStateError{Status: status}
}

// IsStateDenial reports whether err is a lifecycle-state denial, used
// by edges to pick the forbidden status code.
func IsStateDenial(err error) bool {
	var stateErr *domain.AccountStateError
	return errors.As(err, &stateErr)
}
