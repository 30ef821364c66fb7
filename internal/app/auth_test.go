package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Arooshimran/doma-backend/internal/app"
	"github.com/Arooshimran/doma-backend/internal/domain"
)

// fakeTokens issues predictable tokens and extracts subjects from
// headers of the form "JWT subject:<id>".
type fakeTokens struct{}

func (fakeTokens) Issue(vendor domain.Vendor) (string, error) {
	return "token-for-" + vendor.ID, nil
}

func (fakeTokens) ExtractSubject(authorization string) string {
	const prefix = "JWT subject:"
	if len(authorization) <= len(prefix) || authorization[:len(prefix)] != prefix {
		return ""
	}
	return authorization[len(prefix):]
}

func newAuthFixture(t *testing.T) (*mockRepo, *app.AuthService, domain.Vendor) {
	t.Helper()
	repo := newMockRepo()
	vendorSvc := newVendorService(repo, &mockPublisher{})
	vendor := mustRegister(t, vendorSvc, "a@b.com", "x", "Acme Goods")
	return repo, app.NewAuthService(repo, fakeHasher{}, fakeTokens{}), vendor
}

func approveDirectly(repo *mockRepo, id string) {
	v := repo.vendors[id]
	v.Status = domain.StatusApproved
	repo.vendors[id] = v
}

func TestAuthenticate_PendingDeniedEvenWithCorrectPassword(t *testing.T) {
	_, auth, _ := newAuthFixture(t)

	_, err := auth.Authenticate(context.Background(), "a@b.com", "x")
	var stateErr *domain.AccountStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected AccountStateError, got %v", err)
	}
	if stateErr.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", stateErr.Status, domain.StatusPending)
	}
}

func TestAuthenticate_RejectedDenied(t *testing.T) {
	repo, auth, vendor := newAuthFixture(t)

	v := repo.vendors[vendor.ID]
	v.Status = domain.StatusRejected
	repo.vendors[vendor.ID] = v

	_, err := auth.Authenticate(context.Background(), "a@b.com", "x")
	var stateErr *domain.AccountStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected AccountStateError, got %v", err)
	}
	if stateErr.Status != domain.StatusRejected {
		t.Errorf("status = %q, want %q", stateErr.Status, domain.StatusRejected)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	_, auth, _ := newAuthFixture(t)

	_, err := auth.Authenticate(context.Background(), "who@b.com", "x")
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Error("unknown email must not map to invalid credentials")
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo, auth, vendor := newAuthFixture(t)
	approveDirectly(repo, vendor.ID)

	_, err := auth.Authenticate(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	repo, auth, vendor := newAuthFixture(t)
	approveDirectly(repo, vendor.ID)

	session, err := auth.Authenticate(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	if session.Token != "token-for-"+vendor.ID {
		t.Errorf("Token = %q", session.Token)
	}
	if session.Vendor.ID != vendor.ID {
		t.Errorf("Vendor.ID = %q, want %q", session.Vendor.ID, vendor.ID)
	}
	if session.Vendor.Status != domain.StatusApproved {
		t.Errorf("Vendor.Status = %q, want %q", session.Vendor.Status, domain.StatusApproved)
	}
	if session.Vendor.StoreName != "Acme Goods" {
		t.Errorf("Vendor.StoreName = %q", session.Vendor.StoreName)
	}
}

func TestAuthenticate_EmptyInput(t *testing.T) {
	_, auth, _ := newAuthFixture(t)

	for _, c := range []struct{ email, password string }{
		{"", "x"},
		{"a@b.com", ""},
	} {
		_, err := auth.Authenticate(context.Background(), c.email, c.password)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("Authenticate(%q, %q): expected ValidationError, got %v", c.email, c.password, err)
		}
	}
}

// raceRepo flips the vendor to rejected on the GetByID re-read,
// simulating a decision landing between password check and token issue.
type raceRepo struct {
	*mockRepo
}

func (r *raceRepo) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	v, err := r.mockRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Vendor{}, err
	}
	v.Status = domain.StatusRejected
	return v, nil
}

func TestAuthenticate_StatusRecheckedAfterPassword(t *testing.T) {
	repo, _, vendor := newAuthFixture(t)
	approveDirectly(repo, vendor.ID)

	auth := app.NewAuthService(&raceRepo{repo}, fakeHasher{}, fakeTokens{})

	_, err := auth.Authenticate(context.Background(), "a@b.com", "x")
	var stateErr *domain.AccountStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected AccountStateError from re-check, got %v", err)
	}
}

func TestExtractActor(t *testing.T) {
	_, auth, _ := newAuthFixture(t)

	actor := auth.ExtractActor("JWT subject:v-42")
	if actor.Kind != domain.ActorVendor || actor.ID != "v-42" {
		t.Errorf("actor = %+v, want vendor v-42", actor)
	}

	if got := auth.ExtractActor("Bearer nope"); got != (domain.Actor{}) {
		t.Errorf("actor = %+v, want anonymous", got)
	}
	if got := auth.ExtractActor(""); got != (domain.Actor{}) {
		t.Errorf("actor = %+v, want anonymous", got)
	}
}
