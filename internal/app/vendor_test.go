package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Arooshimran/doma-backend/internal/app"
	"github.com/Arooshimran/doma-backend/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	vendors map[string]domain.Vendor
	emails  map[string]string // email -> id

	// failSwap forces UpdateDecision to report a lost compare-and-swap
	// without changing state, simulating a concurrent writer.
	failSwap bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		vendors: make(map[string]domain.Vendor),
		emails:  make(map[string]string),
	}
}

func (m *mockRepo) Create(_ context.Context, v domain.Vendor) error {
	m.vendors[v.ID] = v
	m.emails[v.Email] = v.ID
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (domain.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return v, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (domain.Vendor, error) {
	id, ok := m.emails[email]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return m.vendors[id], nil
}

func (m *mockRepo) List(_ context.Context, _ domain.ListFilter) ([]domain.Vendor, error) {
	out := make([]domain.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		out = append(out, v)
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, v domain.Vendor) error {
	m.vendors[v.ID] = v
	return nil
}

func (m *mockRepo) UpdateDecision(_ context.Context, v domain.Vendor, expected domain.Status) (bool, error) {
	if m.failSwap {
		return false, nil
	}
	current, ok := m.vendors[v.ID]
	if !ok {
		return false, domain.ErrVendorNotFound
	}
	if current.Status != expected {
		return false, nil
	}
	m.vendors[v.ID] = v
	return true, nil
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	event  domain.Event
	vendor domain.Vendor
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, v domain.Vendor) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{event: e, vendor: v})
	return nil
}

// tableValidator validates against domain.Transitions directly so app
// tests do not depend on the FSM adapter.
type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	for _, tr := range domain.Transitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newVendorService(repo *mockRepo, pub *mockPublisher) *app.VendorService {
	return app.NewVendorService(repo, pub, tableValidator{}, fakeHasher{}, testLogger())
}

func mustRegister(t *testing.T, svc *app.VendorService, email, password, storeName string) domain.Vendor {
	t.Helper()
	vendor, err := svc.Register(context.Background(), app.RegisterInput{
		Email:     email,
		Password:  password,
		StoreName: storeName,
	})
	if err != nil {
		t.Fatalf("Register(%q) failed: %v", email, err)
	}
	return vendor
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	if vendor.Status != domain.StatusPending {
		t.Errorf("Status = %q, want %q", vendor.Status, domain.StatusPending)
	}
	if vendor.Role != "vendor" {
		t.Errorf("Role = %q, want %q", vendor.Role, "vendor")
	}
	if vendor.Slug != "acme-goods" {
		t.Errorf("Slug = %q, want %q", vendor.Slug, "acme-goods")
	}
	if vendor.PasswordHash == "x" || vendor.PasswordHash == "" {
		t.Errorf("PasswordHash = %q, plaintext must not be stored", vendor.PasswordHash)
	}

	stored, err := repo.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("vendor not found in repo: %v", err)
	}
	if stored.ID != vendor.ID {
		t.Errorf("stored ID = %q, want %q", stored.ID, vendor.ID)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newVendorService(newMockRepo(), &mockPublisher{})

	cases := []app.RegisterInput{
		{Password: "x", StoreName: "Acme"},
		{Email: "a@b.com", StoreName: "Acme"},
		{Email: "a@b.com", Password: "x"},
	}

	for i, in := range cases {
		_, err := svc.Register(context.Background(), in)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	_, err := svc.Register(context.Background(), app.RegisterInput{
		Email:     "a@b.com",
		Password:  "y",
		StoreName: "Other Store",
	})
	var conflict *domain.EmailConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EmailConflictError, got %v", err)
	}
	if conflict.Email != "a@b.com" {
		t.Errorf("email = %q, want %q", conflict.Email, "a@b.com")
	}
	if n := len(repo.vendors); n != 1 {
		t.Errorf("vendor count = %d, want 1 (no second document)", n)
	}
}

func TestRegister_NoNotification(t *testing.T) {
	pub := &mockPublisher{}
	svc := newVendorService(newMockRepo(), pub)

	mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	if len(pub.events) != 0 {
		t.Errorf("expected no events on registration, got %d", len(pub.events))
	}
}

// --- Approve ---

func TestApprove_Success(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	approved, err := svc.Approve(context.Background(), vendor.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if approved.Status != domain.StatusApproved {
		t.Errorf("Status = %q, want %q", approved.Status, domain.StatusApproved)
	}
	if approved.Decision.ApprovedBy != "admin-1" {
		t.Errorf("ApprovedBy = %q, want %q", approved.Decision.ApprovedBy, "admin-1")
	}
	if approved.Decision.ApprovedAt.IsZero() {
		t.Error("ApprovedAt should be set")
	}
	if approved.Decision.ApprovalNote != "Approved by admin" {
		t.Errorf("ApprovalNote = %q, want default note", approved.Decision.ApprovalNote)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].event != domain.EventApprove {
		t.Errorf("event = %q, want %q", pub.events[0].event, domain.EventApprove)
	}
}

func TestApprove_Idempotent(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	first, err := svc.Approve(context.Background(), vendor.ID, "admin-1", "welcome")
	if err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}

	second, err := svc.Approve(context.Background(), vendor.ID, "admin-2", "again")
	if err != nil {
		t.Fatalf("second Approve failed: %v", err)
	}

	// Metadata from the first decision survives.
	if second.Decision.ApprovedBy != first.Decision.ApprovedBy {
		t.Errorf("ApprovedBy = %q, want %q", second.Decision.ApprovedBy, first.Decision.ApprovedBy)
	}
	if second.Decision.ApprovalNote != "welcome" {
		t.Errorf("ApprovalNote = %q, want %q", second.Decision.ApprovalNote, "welcome")
	}
	if len(pub.events) != 1 {
		t.Errorf("expected exactly 1 event after repeat approve, got %d", len(pub.events))
	}
}

func TestApprove_NotFound(t *testing.T) {
	svc := newVendorService(newMockRepo(), &mockPublisher{})

	_, err := svc.Approve(context.Background(), "nonexistent", "admin-1", "")
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestApprove_AfterReject(t *testing.T) {
	svc := newVendorService(newMockRepo(), &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")
	if _, err := svc.Reject(context.Background(), vendor.ID, "admin-1", "incomplete docs"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	_, err := svc.Approve(context.Background(), vendor.ID, "admin-1", "")
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Current != domain.StatusRejected {
		t.Errorf("current = %q, want %q", trErr.Current, domain.StatusRejected)
	}
}

func TestApprove_LostSwapToSameTarget(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	// A concurrent approve wins between our read and write.
	repo.failSwap = true
	concurrent := repo.vendors[vendor.ID]
	concurrent.Status = domain.StatusApproved
	concurrent.Decision.ApprovedBy = "admin-0"
	repo.vendors[vendor.ID] = concurrent

	got, err := svc.Approve(context.Background(), vendor.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if got.Decision.ApprovedBy != "admin-0" {
		t.Errorf("ApprovedBy = %q, want the concurrent writer's stamp", got.Decision.ApprovedBy)
	}
	if len(pub.events) != 0 {
		t.Errorf("lost swap must not publish, got %d events", len(pub.events))
	}
}

func TestApprove_PublishFailureDoesNotRollBack(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{err: errors.New("queue down")}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	approved, err := svc.Approve(context.Background(), vendor.ID, "admin-1", "")
	if err != nil {
		t.Fatalf("Approve should swallow publish failure, got %v", err)
	}
	if approved.Status != domain.StatusApproved {
		t.Errorf("Status = %q, want %q", approved.Status, domain.StatusApproved)
	}

	stored, _ := repo.GetByID(context.Background(), vendor.ID)
	if stored.Status != domain.StatusApproved {
		t.Errorf("stored Status = %q, transition must stay committed", stored.Status)
	}
}

// --- Reject ---

func TestReject_Success(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	rejected, err := svc.Reject(context.Background(), vendor.ID, "admin-1", "incomplete documents")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	if rejected.Status != domain.StatusRejected {
		t.Errorf("Status = %q, want %q", rejected.Status, domain.StatusRejected)
	}
	if rejected.Decision.RejectionReason != "incomplete documents" {
		t.Errorf("RejectionReason = %q", rejected.Decision.RejectionReason)
	}
	if rejected.Decision.RejectedAt.IsZero() {
		t.Error("RejectedAt should be set")
	}
	if rejected.Decision.ApprovedBy != "" || !rejected.Decision.ApprovedAt.IsZero() {
		t.Error("approval metadata must be empty on a rejected vendor")
	}
	if len(pub.events) != 1 || pub.events[0].event != domain.EventReject {
		t.Errorf("expected a single reject event, got %+v", pub.events)
	}
}

func TestReject_EmptyReason(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	_, err := svc.Reject(context.Background(), vendor.ID, "admin-1", "")
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), vendor.ID)
	if stored.Status != domain.StatusPending {
		t.Errorf("Status = %q, rejection without reason must not mutate state", stored.Status)
	}
}

func TestReject_Idempotent(t *testing.T) {
	repo := newMockRepo()
	pub := &mockPublisher{}
	svc := newVendorService(repo, pub)

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	if _, err := svc.Reject(context.Background(), vendor.ID, "admin-1", "first reason"); err != nil {
		t.Fatalf("first Reject failed: %v", err)
	}
	second, err := svc.Reject(context.Background(), vendor.ID, "admin-2", "second reason")
	if err != nil {
		t.Fatalf("second Reject failed: %v", err)
	}

	if second.Decision.RejectionReason != "first reason" {
		t.Errorf("RejectionReason = %q, want the original reason", second.Decision.RejectionReason)
	}
	if len(pub.events) != 1 {
		t.Errorf("expected exactly 1 event after repeat reject, got %d", len(pub.events))
	}
}

// --- Profile ---

func TestUpdateProfile_KeepsSlugAndStatus(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	name := "Totally Different Name"
	desc := "handmade goods"
	updated, err := svc.UpdateProfile(context.Background(), vendor.ID, app.ProfileInput{
		StoreName:        &name,
		StoreDescription: &desc,
		Contact:          &domain.ContactInfo{Phone: "123", City: "Lisbon"},
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if updated.StoreName != name {
		t.Errorf("StoreName = %q, want %q", updated.StoreName, name)
	}
	if updated.Slug != "acme-goods" {
		t.Errorf("Slug = %q, must stay immutable", updated.Slug)
	}
	if updated.Status != domain.StatusPending {
		t.Errorf("Status = %q, profile edit must not touch status", updated.Status)
	}
	if updated.Contact.City != "Lisbon" {
		t.Errorf("Contact.City = %q, want %q", updated.Contact.City, "Lisbon")
	}
	if updated.Email != "a@b.com" {
		t.Errorf("Email = %q, must stay unchanged", updated.Email)
	}
}

func TestUpdateProfile_EmptyStoreName(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	empty := "  "
	_, err := svc.UpdateProfile(context.Background(), vendor.ID, app.ProfileInput{StoreName: &empty})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// --- Lookup ---

func TestGetByEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	vendor := mustRegister(t, svc, "a@b.com", "x", "Acme Goods")

	got, err := svc.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != vendor.ID {
		t.Errorf("ID = %q, want %q", got.ID, vendor.ID)
	}

	if _, err := svc.GetByEmail(context.Background(), "missing@b.com"); !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	repo := newMockRepo()
	svc := newVendorService(repo, &mockPublisher{})

	for i := range 3 {
		mustRegister(t, svc, fmt.Sprintf("v%d@b.com", i), "x", fmt.Sprintf("Store %d", i))
	}

	vendors, err := svc.List(context.Background(), domain.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(vendors) != 3 {
		t.Errorf("len = %d, want 3", len(vendors))
	}
}
