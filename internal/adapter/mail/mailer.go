package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Compile-time check: Mailer implements domain.Mailer.
var _ domain.Mailer = (*Mailer)(nil)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Mailer delivers messages over SMTP.
type Mailer struct {
	client *gomail.Client
	cfg    Config
}

// New creates an SMTP mailer from the given config.
func New(cfg Config) (*Mailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &Mailer{client: client, cfg: cfg}, nil
}

// Send submits one rendered message. A single call maps to a single
// delivery attempt; retry policy belongs to the caller (the job queue).
func (m *Mailer) Send(ctx context.Context, msg domain.Message) error {
	out := gomail.NewMsg()

	if err := out.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	out.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return &domain.DependencyError{Op: "sending email", Err: err}
	}

	return nil
}
