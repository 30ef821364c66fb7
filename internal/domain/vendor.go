package domain

import "time"

// Status represents the lifecycle state of a vendor account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Event represents an admin decision that triggers a state transition.
type Event string

const (
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// Transition defines a valid state change: an event moves a vendor from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the vendor lifecycle.
// Approved and rejected are terminal; there is no reopen path back to
// pending. Repeating a decision on a vendor already at the target state
// is handled as an idempotent no-op by the service, not by the machine.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventApprove, Src: StatusPending, Dst: StatusApproved},
	{Event: EventReject, Src: StatusPending, Dst: StatusRejected},
}

// BusinessType classifies the legal form of a vendor's business.
type BusinessType string

const (
	BusinessIndividual  BusinessType = "individual"
	BusinessCompany     BusinessType = "company"
	BusinessPartnership BusinessType = "partnership"
)

// ContactInfo groups the vendor's contact fields.
type ContactInfo struct {
	Phone   string
	Address string
	City    string
	Country string
}

// BusinessInfo groups the vendor's business registration fields.
type BusinessInfo struct {
	BusinessLicense string
	TaxID           string
	BusinessType    BusinessType
}

// Decision holds the metadata stamped by an approve or reject
// transition. At most one of the two halves is populated, matching the
// vendor's current status.
type Decision struct {
	ApprovedBy   string
	ApprovedAt   time.Time
	ApprovalNote string

	RejectedBy      string
	RejectedAt      time.Time
	RejectionReason string
}

// Vendor is the core domain entity representing a store on the marketplace.
type Vendor struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string

	StoreName        string
	Slug             string
	StoreDescription string
	LogoID           string

	Contact  ContactInfo
	Business BusinessInfo

	Status   Status
	Decision Decision

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the sanitized vendor representation safe to hand to
// clients. It never carries the password hash or decision internals.
type Summary struct {
	ID        string
	Email     string
	StoreName string
	Slug      string
	Status    Status
}

// NewVendor creates a vendor in the initial "pending" state. The status
// and role are forced here regardless of what registration input
// carried; only an admin decision moves a vendor out of pending.
func NewVendor(id, email, passwordHash, storeName string) Vendor {
	now := time.Now().UTC()
	return Vendor{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "vendor",
		StoreName:    storeName,
		Slug:         Slugify(storeName),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Summarize returns the client-safe view of the vendor.
func (v Vendor) Summarize() Summary {
	return Summary{
		ID:        v.ID,
		Email:     v.Email,
		StoreName: v.StoreName,
		Slug:      v.Slug,
		Status:    v.Status,
	}
}
