package service

import (
	"context"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
)

// EmailNotifier is an event sink that turns dispute-related events into
// operational mail. Delivery failures are logged and dropped; the engine
// never waits on or retries notification delivery.
type EmailNotifier struct {
	emailSvc EmailService
}

func NewEmailNotifier(emailSvc EmailService) *EmailNotifier {
	return &EmailNotifier{emailSvc: emailSvc}
}

func (n *EmailNotifier) Emit(ctx context.Context, event domain.Event) {
	var err error
	switch e := event.(type) {
	case domain.DealDisputed:
		err = n.emailSvc.SendDisputeAlert(ctx, e.DealID, e.Disputer)
	case domain.DealResolved:
		err = n.emailSvc.SendResolutionNotice(ctx, e.DealID, e.Winner, e.ReleasedUnits)
	default:
		return
	}
	if err != nil {
		logger.Error("Failed to send event notification", "event_type", event.EventType(), "error", err)
	}
}
