// Package ledger defines the custody capability the escrow engine moves
// value through. The engine never implements fund movement itself; a
// deployment injects an adapter backed by a token transfer or a bank
// transfer, and tests use the in-memory adapter.
package ledger

import "context"

// Adapter is the narrow custody interface. Both operations are atomic
// with respect to the adapter's own bookkeeping and return an error on
// failure; the engine checks every result.
type Adapter interface {
	// Debit removes amountUnits of asset from the party's balance into
	// custody. It fails without side effects if the party cannot cover
	// the amount.
	Debit(ctx context.Context, party, asset string, amountUnits int64) error

	// Credit releases amountUnits of asset from custody to the party.
	Credit(ctx context.Context, party, asset string, amountUnits int64) error
}
