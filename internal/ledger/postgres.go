package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresAdapter keeps party balances in a ledger_accounts table. A
// debit is a conditional decrement so two concurrent debits can never
// take a balance negative.
type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(db *sql.DB) *PostgresAdapter {
	return &PostgresAdapter{db: db}
}

func (a *PostgresAdapter) Debit(ctx context.Context, party, asset string, amountUnits int64) error {
	if amountUnits < 0 {
		return fmt.Errorf("debit amount must be non-negative, got %d", amountUnits)
	}

	res, err := a.db.ExecContext(ctx, `
		UPDATE ledger_accounts
		SET balance_units = balance_units - $3,
		    updated_on = NOW()
		WHERE party = $1 AND asset = $2 AND balance_units >= $3`,
		party, asset, amountUnits)
	if err != nil {
		return fmt.Errorf("debit %s/%s: %w", party, asset, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit %s/%s: %w", party, asset, err)
	}
	if affected == 0 {
		return fmt.Errorf("insufficient balance: %s cannot cover %d %s", party, amountUnits, asset)
	}
	return nil
}

func (a *PostgresAdapter) Credit(ctx context.Context, party, asset string, amountUnits int64) error {
	if amountUnits < 0 {
		return fmt.Errorf("credit amount must be non-negative, got %d", amountUnits)
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO ledger_accounts (party, asset, balance_units, updated_on)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (party, asset)
		DO UPDATE SET balance_units = ledger_accounts.balance_units + $3,
		              updated_on = NOW()`,
		party, asset, amountUnits)
	if err != nil {
		return fmt.Errorf("credit %s/%s: %w", party, asset, err)
	}
	return nil
}
