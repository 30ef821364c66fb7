package mail

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// Decision templates render the two notification emails. Both carry an
// HTML body and a plain-text alternative; the content mirrors what the
// marketplace has always sent: store name, account email, decision
// date, and the admin's note or reason.

var approvalHTML = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #28a745; color: white; padding: 20px; text-align: center;">
    <h1>Congratulations!</h1>
  </div>
  <div style="padding: 30px; background: #f8f9fa;">
    <h2>Your vendor application has been approved</h2>
    <p>Dear {{.StoreName}} team,</p>
    <p>We're excited to inform you that your vendor application has been <strong>approved</strong>.</p>
    <div style="background: white; padding: 20px; border-radius: 5px; margin: 20px 0;">
      <p><strong>Store Name:</strong> {{.StoreName}}</p>
      <p><strong>Email:</strong> {{.Email}}</p>
      <p><strong>Status:</strong> <span style="color: #28a745; font-weight: bold;">APPROVED</span></p>
      <p><strong>Approved Date:</strong> {{.Date}}</p>
      {{if .Note}}<p><strong>Admin Note:</strong> {{.Note}}</p>{{end}}
    </div>
    <p>You can now log in to your vendor dashboard and start selling.</p>
    <p>Welcome to the marketplace!</p>
  </div>
</body>
</html>`))

var rejectionHTML = template.Must(template.New("rejection").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #dc3545; color: white; padding: 20px; text-align: center;">
    <h1>Application Update</h1>
  </div>
  <div style="padding: 30px; background: #f8f9fa;">
    <h2>Update on your vendor application</h2>
    <p>Dear {{.StoreName}} team,</p>
    <p>Thank you for your interest in joining our marketplace. After careful review, we are unable to approve your vendor application at this time.</p>
    <div style="background: white; padding: 20px; border-radius: 5px; margin: 20px 0;">
      <p><strong>Store Name:</strong> {{.StoreName}}</p>
      <p><strong>Email:</strong> {{.Email}}</p>
      <p><strong>Status:</strong> <span style="color: #dc3545; font-weight: bold;">NOT APPROVED</span></p>
      <p><strong>Review Date:</strong> {{.Date}}</p>
    </div>
    <div style="background: white; padding: 20px; border-left: 4px solid #dc3545; margin: 20px 0;">
      <p><strong>Reason for Decision:</strong></p>
      <p>{{.Reason}}</p>
    </div>
    <p>We encourage you to reapply once you've addressed the concerns mentioned above.</p>
  </div>
</body>
</html>`))

type decisionData struct {
	StoreName string
	Email     string
	Date      string
	Note      string
	Reason    string
}

// ApprovalMessage renders the welcome notification for an approved vendor.
func ApprovalMessage(storeName, email string, decidedAt time.Time, note string) domain.Message {
	data := decisionData{
		StoreName: storeName,
		Email:     email,
		Date:      formatDate(decidedAt),
		Note:      note,
	}

	var html strings.Builder
	_ = approvalHTML.Execute(&html, data)

	text := fmt.Sprintf(
		"Congratulations! Your vendor application has been approved.\n\n"+
			"Store Name: %s\nEmail: %s\nStatus: APPROVED\nApproved Date: %s\n",
		data.StoreName, data.Email, data.Date,
	)
	if note != "" {
		text += fmt.Sprintf("Admin Note: %s\n", note)
	}
	text += "\nYou can now log in to your vendor dashboard and start selling.\nWelcome to the marketplace!\n"

	return domain.Message{
		To:      email,
		Subject: fmt.Sprintf("Your %s vendor application has been approved", storeName),
		HTML:    html.String(),
		Text:    text,
	}
}

// RejectionMessage renders the decision notification for a rejected vendor.
func RejectionMessage(storeName, email string, decidedAt time.Time, reason string) domain.Message {
	data := decisionData{
		StoreName: storeName,
		Email:     email,
		Date:      formatDate(decidedAt),
		Reason:    reason,
	}

	var html strings.Builder
	_ = rejectionHTML.Execute(&html, data)

	text := fmt.Sprintf(
		"Update on your vendor application.\n\n"+
			"Store Name: %s\nEmail: %s\nStatus: NOT APPROVED\nReview Date: %s\n\n"+
			"Reason for Decision:\n%s\n\n"+
			"We encourage you to reapply once you've addressed the concerns above.\n",
		data.StoreName, data.Email, data.Date, data.Reason,
	)

	return domain.Message{
		To:      email,
		Subject: fmt.Sprintf("Update on your %s vendor application", storeName),
		HTML:    html.String(),
		Text:    text,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.Format("January 2, 2006")
}
