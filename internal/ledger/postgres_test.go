package ledger_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/tobiasgatti02/Tolio-sub002/internal/ledger"
)

func TestPostgresAdapter_Debit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	adapter := ledger.NewPostgresAdapter(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE ledger_accounts").
			WithArgs("renter-1", "USDT", int64(10_000)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, adapter.Debit(ctx, "renter-1", "USDT", 10_000))
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		// The conditional update matches no row when the balance
		// cannot cover the amount.
		mock.ExpectExec("UPDATE ledger_accounts").
			WithArgs("renter-1", "USDT", int64(10_000)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Debit(ctx, "renter-1", "USDT", 10_000)
		assert.ErrorContains(t, err, "insufficient balance")
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		assert.Error(t, adapter.Debit(ctx, "renter-1", "USDT", -1))
	})
}

func TestPostgresAdapter_Credit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	adapter := ledger.NewPostgresAdapter(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO ledger_accounts").
			WithArgs("owner-1", "USDT", int64(9_500)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, adapter.Credit(ctx, "owner-1", "USDT", 9_500))
	})

	t.Run("NegativeAmount", func(t *testing.T) {
		assert.Error(t, adapter.Credit(ctx, "owner-1", "USDT", -1))
	})
}
