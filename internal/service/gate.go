package service

import (
	"context"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
)

// ArbitrationGate is the restricted surface dispute resolution goes
// through. It checks the configured arbitrator identity before the state
// machine guard runs, so "wrong caller" and "wrong state" stay
// distinguishable error kinds. The gate holds no state of its own.
type ArbitrationGate struct {
	escrow     EscrowService
	arbitrator string
}

func NewArbitrationGate(escrow EscrowService, arbitrator string) *ArbitrationGate {
	return &ArbitrationGate{escrow: escrow, arbitrator: arbitrator}
}

func (g *ArbitrationGate) ResolveDispute(ctx context.Context, dealID int64, caller string, favorOwner bool) error {
	if caller != g.arbitrator {
		return domain.ErrUnauthorized
	}
	return g.escrow.ResolveDispute(ctx, dealID, caller, favorOwner)
}
