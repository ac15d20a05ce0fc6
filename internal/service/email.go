package service

import (
	"context"
	"fmt"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// emailService sends operational mail through SendGrid. Deal parties are
// opaque identifiers without addresses, so everything goes to the
// configured operations inbox, which the arbitration team watches.
type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	opsEmail  string
}

func NewEmailService(apiKey, fromEmail, fromName, opsEmail string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

func (s *emailService) send(subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("Escrow Operations", s.opsEmail)

	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendDisputeAlert(ctx context.Context, dealID int64, disputer string) error {
	subject := fmt.Sprintf("Dispute reported on deal %d", dealID)
	body := fmt.Sprintf("Party %s reported a dispute on deal %d.\n\nThe deal is frozen until the arbitrator resolves it.", disputer, dealID)
	return s.send(subject, body)
}

func (s *emailService) SendResolutionNotice(ctx context.Context, dealID int64, winner string, releasedUnits int64) error {
	subject := fmt.Sprintf("Dispute resolved on deal %d", dealID)
	body := fmt.Sprintf("The arbitrator resolved deal %d in favor of %s.\n\nReleased from custody: %d units.", dealID, winner, releasedUnits)
	return s.send(subject, body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, deal *domain.Deal) error {
	subject := fmt.Sprintf("Deal %d is past its rental window", deal.ID)
	body := fmt.Sprintf(
		"Deal %d (item %s) ended %s and is still active.\nOwner confirmed: %t, renter confirmed: %t.\n\nA party may need a nudge to confirm the return or report a dispute.",
		deal.ID, deal.ItemID, deal.EndTime.Format("2006-01-02"), deal.OwnerConfirmed, deal.RenterConfirmed)
	return s.send(subject, body)
}
