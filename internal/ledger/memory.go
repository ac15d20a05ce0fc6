package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryAdapter is the reference in-memory implementation: a per-party
// balance map behind a single mutex. It backs tests and local runs.
type MemoryAdapter struct {
	mu       sync.Mutex
	balances map[string]int64 // key: party + "/" + asset
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{balances: make(map[string]int64)}
}

func key(party, asset string) string {
	return party + "/" + asset
}

// Seed sets a party's balance directly, for test setup.
func (m *MemoryAdapter) Seed(party, asset string, amountUnits int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[key(party, asset)] = amountUnits
}

// Balance returns a party's current balance.
func (m *MemoryAdapter) Balance(party, asset string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[key(party, asset)]
}

func (m *MemoryAdapter) Debit(ctx context.Context, party, asset string, amountUnits int64) error {
	if amountUnits < 0 {
		return fmt.Errorf("debit amount must be non-negative, got %d", amountUnits)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(party, asset)
	if m.balances[k] < amountUnits {
		return fmt.Errorf("insufficient balance: %s holds %d %s, need %d", party, m.balances[k], asset, amountUnits)
	}
	m.balances[k] -= amountUnits
	return nil
}

func (m *MemoryAdapter) Credit(ctx context.Context, party, asset string, amountUnits int64) error {
	if amountUnits < 0 {
		return fmt.Errorf("credit amount must be non-negative, got %d", amountUnits)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[key(party, asset)] += amountUnits
	return nil
}
