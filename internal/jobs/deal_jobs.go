package jobs

import (
	"context"

	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
)

// SendOverdueReminders emails the ops inbox about active deals whose end
// time has passed without a confirmed return. The sweep only reports;
// deal state changes always go through the engine with a party acting.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		deals, err := jr.dealRepo.ListOverdueActive(ctx)
		if err != nil {
			logger.Error("Failed to list overdue deals", "error", err)
			return
		}

		sent := 0
		for i := range deals {
			deal := &deals[i]
			if err := jr.email.SendOverdueReminder(ctx, deal); err != nil {
				logger.Error("Failed to send overdue reminder",
					"deal_id", deal.ID,
					"error", err)
				continue
			}
			sent++
			logger.Debug("Sent overdue reminder",
				"deal_id", deal.ID,
				"renter", deal.Renter,
				"end_time", deal.EndTime)
		}

		logger.Info("Overdue reminder sweep finished", "overdue", len(deals), "sent", sent)
	})
}
