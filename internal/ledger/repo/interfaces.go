package repo

import (
	"context"
	"errors"
)

// ErrInsufficient is returned when a debit would take the payer below zero;
// the ledger service maps it onto the marketplace error.
var ErrInsufficient = errors.New("ledger repo: insufficient balance")

type BalancesRepo interface {
	// GetBalance reports owner's balance in smallest units; a missing row is
	// a zero balance.
	GetBalance(ctx context.Context, ownerID uint64) (uint64, error)
	// Credit adds amount to owner's balance, creating the row when absent.
	Credit(ctx context.Context, ownerID uint64, amount uint64) error
	// Transfer moves amount from payer to payee in one transaction, failing
	// with ErrInsufficient when payer's balance is below amount.
	Transfer(ctx context.Context, payerID, payeeID uint64, amount uint64) error
}

type Repo interface {
	BalancesRepo
}
