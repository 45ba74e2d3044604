// Package ledger implements the currency collaborator: fungible balances per
// account and the atomic transfer the marketplace settles against.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"gophermart.com/internal/market"
)

// MemLedger is the in-memory reference ledger. Mint is the faucet used by
// tests and local setups.
type MemLedger struct {
	mu       sync.Mutex
	balances map[market.AccountID]uint64
}

func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[market.AccountID]uint64)}
}

// Mint credits amount out of thin air.
func (l *MemLedger) Mint(ctx context.Context, account market.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
	return nil
}

func (l *MemLedger) BalanceOf(ctx context.Context, account market.AccountID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}

// Transfer debits payer and credits payee under one lock; the balance check
// and both mutations are a single indivisible step.
func (l *MemLedger) Transfer(ctx context.Context, payer, payee market.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[payer] < amount {
		return fmt.Errorf("transfer %d from %d to %d: %w", amount, payer, payee, market.ErrInsufficientFunds)
	}
	l.balances[payer] -= amount
	l.balances[payee] += amount
	return nil
}
