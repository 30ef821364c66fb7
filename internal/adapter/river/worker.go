package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/Arooshimran/doma-backend/internal/adapter/mail"
	"github.com/Arooshimran/doma-backend/internal/domain"
)

// DecisionWorker delivers decision notification jobs from the River
// queue. Delivery failures are logged and returned so River retries up
// to the job's attempt cap; the vendor's committed status transition is
// unaffected either way.
type DecisionWorker struct {
	river.WorkerDefaults[DecisionJobArgs]

	mailer domain.Mailer
}

// NewDecisionWorker creates a worker that delivers through mailer.
func NewDecisionWorker(mailer domain.Mailer) *DecisionWorker {
	return &DecisionWorker{mailer: mailer}
}

// Work renders and sends the notification for a single decision job.
func (w *DecisionWorker) Work(ctx context.Context, job *river.Job[DecisionJobArgs]) error {
	args := job.Args

	var msg domain.Message
	switch domain.Event(args.Event) {
	case domain.EventApprove:
		msg = mail.ApprovalMessage(args.StoreName, args.Email, args.DecidedAt, args.Note)
	case domain.EventReject:
		msg = mail.RejectionMessage(args.StoreName, args.Email, args.DecidedAt, args.Reason)
	default:
		// Unknown event kinds are logged and dropped, retrying cannot help.
		slog.WarnContext(ctx, "dropping decision job with unknown event",
			"event", args.Event,
			"vendor_id", args.VendorID,
			"job_id", job.ID,
		)
		return nil
	}

	if err := w.mailer.Send(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "sending decision email failed",
			"event", args.Event,
			"vendor_id", args.VendorID,
			"vendor_email", args.Email,
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}

	slog.InfoContext(ctx, "decision email sent",
		"event", args.Event,
		"vendor_id", args.VendorID,
		"vendor_email", args.Email,
		"job_id", job.ID,
	)
	return nil
}
