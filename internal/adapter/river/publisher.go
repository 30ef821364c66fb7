package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// DecisionJobArgs carries the data needed to deliver a decision
// notification asynchronously. River serializes this as JSON into its
// job queue table. It includes a snapshot of the vendor at the time
// the decision was published, so the worker never needs to query the
// database.
type DecisionJobArgs struct {
	Event     string    `json:"event"`
	VendorID  string    `json:"vendor_id"`
	Email     string    `json:"email"`
	StoreName string    `json:"store_name"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (DecisionJobArgs) Kind() string { return "vendor.decision" }

// InsertOpts caps delivery attempts: a notification that keeps failing
// is dropped after the third try, it never blocks the queue.
func (DecisionJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 3}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
// The queue table lives in the same SQLite database as the vendor rows,
// so an enqueued notification is durable once Publish returns.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a decision event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, vendor domain.Vendor) error {
	args := DecisionJobArgs{
		Event:     string(event),
		VendorID:  vendor.ID,
		Email:     vendor.Email,
		StoreName: vendor.StoreName,
		Status:    string(vendor.Status),
	}

	switch event {
	case domain.EventApprove:
		args.Note = vendor.Decision.ApprovalNote
		args.DecidedAt = vendor.Decision.ApprovedAt
	case domain.EventReject:
		args.Reason = vendor.Decision.RejectionReason
		args.DecidedAt = vendor.Decision.RejectedAt
	}

	if _, err := p.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("enqueuing decision job: %w", err)
	}
	return nil
}
