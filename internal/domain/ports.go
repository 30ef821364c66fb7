package domain

import "context"

// VendorRepository defines the persistence contract for vendors.
type VendorRepository interface {
	Create(ctx context.Context, vendor Vendor) error
	GetByID(ctx context.Context, id string) (Vendor, error)
	GetByEmail(ctx context.Context, email string) (Vendor, error)
	List(ctx context.Context, filter ListFilter) ([]Vendor, error)
	Update(ctx context.Context, vendor Vendor) error

	// UpdateDecision persists a status transition only if the stored
	// status still equals expected (compare-and-swap). It returns false
	// without error when a concurrent writer got there first; the
	// caller re-reads and decides whether that is the idempotent case.
	UpdateDecision(ctx context.Context, vendor Vendor, expected Status) (bool, error)
}

// ListFilter holds optional criteria for listing vendors.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// CategoryRepository defines the persistence contract for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category Category) error
	GetByName(ctx context.Context, name string) (Category, error)
	List(ctx context.Context) ([]Category, error)
}

// EventPublisher defines the contract for emitting decision events.
// Implementations must make the event durable before returning; actual
// notification delivery happens out of band.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, vendor Vendor) error
}

// TransitionValidator checks whether an event may fire from a status
// and reports the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}

// PasswordHasher abstracts credential hashing and verification.
// Plaintext passwords exist only as arguments here, never on entities.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenSource issues and verifies bearer tokens for vendor sessions.
type TokenSource interface {
	Issue(vendor Vendor) (string, error)

	// ExtractSubject returns the vendor id carried by a verified
	// "JWT <token>" Authorization header, or "" when the header is
	// missing, malformed, unverifiable, or scoped to another subject
	// kind. An empty subject means unauthenticated, not an error.
	ExtractSubject(authorization string) string
}

// Mailer submits a rendered message to the mail transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}
