package market

import "context"

// Custody holds non-fungible assets per owning account.
type Custody interface {
	// Withdraw removes the asset from owner's holdings and hands it to the
	// caller. Fails with ErrAssetNotOwned when owner does not hold it.
	Withdraw(ctx context.Context, owner AccountID, id AssetID) (Asset, error)
	// Deposit adds the asset to recipient's holdings.
	Deposit(ctx context.Context, recipient AccountID, asset Asset) error
}

// Ledger holds fungible currency balances per account.
type Ledger interface {
	BalanceOf(ctx context.Context, account AccountID) (uint64, error)
	// Transfer moves amount from payer to payee atomically, failing with
	// ErrInsufficientFunds when payer's balance is below amount.
	Transfer(ctx context.Context, payer, payee AccountID, amount uint64) error
}

// Appender is one open event stream handle: ordered, append-only,
// fire-and-forget from the core's point of view.
type Appender interface {
	Append(ctx context.Context, event any) error
}

// EventLog opens per-(account, stream) appenders for off-system observers.
type EventLog interface {
	Open(account AccountID, stream string) (Appender, error)
}

// ListingStore mirrors registry mutations into persistent storage so
// registries survive restarts. The in-memory registry stays the source of
// truth for operation semantics.
type ListingStore interface {
	Save(ctx context.Context, seller AccountID, id AssetID, l Listing) error
	Remove(ctx context.Context, seller AccountID, id AssetID) error
	LoadBySeller(ctx context.Context, seller AccountID) (map[AssetID]Listing, error)
}
