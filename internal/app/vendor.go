package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// defaultApprovalNote is stamped when an admin approves without a note.
const defaultApprovalNote = "Approved by admin"

// RegisterInput carries the fields a vendor submits at registration.
// Status and role are never taken from input.
type RegisterInput struct {
	Email     string
	Password  string
	StoreName string
	Contact   domain.ContactInfo
	Business  domain.BusinessInfo
}

// ProfileInput carries the self-service editable fields. Nil pointers
// leave the stored value untouched. Email, status, slug and decision
// metadata are not editable through this path.
type ProfileInput struct {
	StoreName        *string
	StoreDescription *string
	LogoID           *string
	Contact          *domain.ContactInfo
	Business         *domain.BusinessInfo
}

// VendorService orchestrates the vendor lifecycle: registration,
// admin decisions, and self-service profile edits.
type VendorService struct {
	repo      domain.VendorRepository
	publisher domain.EventPublisher
	validator domain.TransitionValidator
	hasher    domain.PasswordHasher
	logger    *slog.Logger
}

// NewVendorService creates a service with the given adapters.
func NewVendorService(
	repo domain.VendorRepository,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
	hasher domain.PasswordHasher,
	logger *slog.Logger,
) *VendorService {
	return &VendorService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		hasher:    hasher,
		logger:    logger,
	}
}

// Register creates a pending vendor. The email is pre-checked so a
// duplicate produces a clean conflict error instead of surfacing the
// store's unique-constraint failure. No notification is sent for
// registration; the first email a vendor receives is the decision.
func (s *VendorService) Register(ctx context.Context, in RegisterInput) (domain.Vendor, error) {
	if err := requireField("email", in.Email); err != nil {
		return domain.Vendor{}, err
	}
	if err := requireField("password", in.Password); err != nil {
		return domain.Vendor{}, err
	}
	if err := requireField("storeName", in.StoreName); err != nil {
		return domain.Vendor{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return domain.Vendor{}, &domain.EmailConflictError{Email: in.Email}
	} else if !errors.Is(err, domain.ErrVendorNotFound) {
		return domain.Vendor{}, fmt.Errorf("checking existing vendor: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("hashing password: %w", err)
	}

	vendor := domain.NewVendor(generateID(), in.Email, hash, in.StoreName)
	vendor.Contact = in.Contact
	vendor.Business = in.Business

	if err := s.repo.Create(ctx, vendor); err != nil {
		return domain.Vendor{}, fmt.Errorf("creating vendor: %w", err)
	}

	return vendor, nil
}

// Approve transitions a pending vendor to approved, stamping the
// reviewing admin and timestamp. Approving an already-approved vendor
// is an idempotent no-op: the stored record comes back unchanged and
// no second notification is published.
func (s *VendorService) Approve(ctx context.Context, vendorID, approvedBy, note string) (domain.Vendor, error) {
	if note == "" {
		note = defaultApprovalNote
	}

	return s.decide(ctx, vendorID, domain.EventApprove, func(v *domain.Vendor) {
		v.Decision = domain.Decision{
			ApprovedBy:   approvedBy,
			ApprovedAt:   time.Now().UTC(),
			ApprovalNote: note,
		}
	})
}

// Reject transitions a pending vendor to rejected. A non-empty reason
// is required before anything is read or written. Rejecting an
// already-rejected vendor is an idempotent no-op.
func (s *VendorService) Reject(ctx context.Context, vendorID, rejectedBy, reason string) (domain.Vendor, error) {
	if err := requireField("reason", reason); err != nil {
		return domain.Vendor{}, err
	}

	return s.decide(ctx, vendorID, domain.EventReject, func(v *domain.Vendor) {
		v.Decision = domain.Decision{
			RejectedBy:      rejectedBy,
			RejectedAt:      time.Now().UTC(),
			RejectionReason: reason,
		}
	})
}

// decide runs the shared transition flow: read, short-circuit when the
// vendor already carries the target status, validate the event, stamp
// the decision, persist with compare-and-swap, then publish. The swap
// makes idempotence a store guarantee rather than a timing one: when a
// concurrent decision wins the race, the re-read tells us whether it
// reached the same state (idempotent success) or a conflicting one.
func (s *VendorService) decide(ctx context.Context, vendorID string, event domain.Event, stamp func(*domain.Vendor)) (domain.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	target, err := s.validator.Apply(ctx, vendor.Status, event)
	if err != nil {
		var trErr *domain.TransitionError
		if errors.As(err, &trErr) && isTarget(vendor.Status, event) {
			return vendor, nil
		}
		return domain.Vendor{}, err
	}

	expected := vendor.Status
	vendor.Status = target
	stamp(&vendor)

	swapped, err := s.repo.UpdateDecision(ctx, vendor, expected)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("updating vendor status: %w", err)
	}
	if !swapped {
		current, err := s.repo.GetByID(ctx, vendorID)
		if err != nil {
			return domain.Vendor{}, err
		}
		if current.Status == target {
			return current, nil
		}
		return domain.Vendor{}, &domain.TransitionError{Event: event, Current: current.Status}
	}

	// The status change is committed; a notification that cannot be
	// enqueued must not undo it.
	if err := s.publisher.Publish(ctx, event, vendor); err != nil {
		s.logger.ErrorContext(ctx, "publishing decision event failed",
			"event", event,
			"vendor_id", vendor.ID,
			"vendor_email", vendor.Email,
			"error", err,
		)
	}

	return vendor, nil
}

// isTarget reports whether status is the destination of event, i.e.
// whether a repeated decision should be treated as idempotent.
func isTarget(status domain.Status, event domain.Event) bool {
	for _, tr := range domain.Transitions {
		if tr.Event == event && tr.Dst == status {
			return true
		}
	}
	return false
}

// GetByID returns a vendor by its unique identifier.
func (s *VendorService) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a vendor by email, used by the public status check.
func (s *VendorService) GetByEmail(ctx context.Context, email string) (domain.Vendor, error) {
	if err := requireField("email", email); err != nil {
		return domain.Vendor{}, err
	}
	return s.repo.GetByEmail(ctx, email)
}

// List returns vendors matching the given filter.
func (s *VendorService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	return s.repo.List(ctx, filter)
}

// UpdateProfile applies self-service edits to a vendor's store fields.
// The slug stays bound to the name the store registered with.
func (s *VendorService) UpdateProfile(ctx context.Context, vendorID string, in ProfileInput) (domain.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	if in.StoreName != nil {
		if err := requireField("storeName", *in.StoreName); err != nil {
			return domain.Vendor{}, err
		}
		vendor.StoreName = *in.StoreName
	}
	if in.StoreDescription != nil {
		vendor.StoreDescription = *in.StoreDescription
	}
	if in.LogoID != nil {
		vendor.LogoID = *in.LogoID
	}
	if in.Contact != nil {
		vendor.Contact = *in.Contact
	}
	if in.Business != nil {
		vendor.Business = *in.Business
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return domain.Vendor{}, fmt.Errorf("updating vendor profile: %w", err)
	}

	return vendor, nil
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return &domain.ValidationError{Field: name, Reason: "must not be empty"}
	}
	return nil
}
