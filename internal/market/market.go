// Package market implements the fixed-price marketplace core: per-seller
// listing registries and the list / buy / delist lifecycle. An asset enters a
// registry only by being withdrawn from the seller's custody, so it can never
// be listed twice, and settlement collapses payment and delivery into one
// indivisible step with no reachable in-between state.
package market

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gophermart.com/pkg/logger"
	"gophermart.com/pkg/metrics"
)

// Deps collects the external collaborators the core consumes. Store is
// optional; Custody, Ledger and Events are required.
type Deps struct {
	Custody Custody
	Ledger  Ledger
	Events  EventLog
	Store   ListingStore
}

// Market owns the per-seller registries and mediates every listing mutation.
type Market struct {
	mu         sync.RWMutex
	registries map[AccountID]*Registry

	custody Custody
	ledger  Ledger
	events  EventLog
	store   ListingStore
}

func New(d Deps) *Market {
	return &Market{
		registries: make(map[AccountID]*Registry),
		custody:    d.Custody,
		ledger:     d.Ledger,
		events:     d.Events,
		store:      d.Store,
	}
}

// Ensure returns account's registry, creating it with freshly opened event
// streams on first use. Idempotent; never fails. Fast path takes only the
// read lock, the slow path double-checks under the write lock so concurrent
// first listings create exactly one registry.
func (m *Market) Ensure(account AccountID) *Registry {
	m.mu.RLock()
	r := m.registries[account]
	m.mu.RUnlock()
	if r != nil {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r = m.registries[account]; r != nil {
		return r
	}

	r = newRegistry()
	r.listingLog = m.openStream(account, StreamListing)
	r.buyingLog = m.openStream(account, StreamBuying)
	r.delistingLog = m.openStream(account, StreamDelisting)

	if m.store != nil {
		// Rehydrate escrowed listings from the durability mirror. The mirror
		// is written behind the in-memory state, so a load failure means we
		// start empty rather than refuse the account.
		ctx := context.Background()
		if rows, err := m.store.LoadBySeller(ctx, account); err != nil {
			logger.Error(ctx, "registry hydrate failed",
				zap.Uint64("seller", uint64(account)), zap.Error(err))
		} else if len(rows) > 0 {
			r.listings = rows
			metrics.ActiveListings.Add(float64(len(rows)))
		}
	}

	m.registries[account] = r
	return r
}

// List escrows the asset: withdraws it from seller's custody, records the
// listing at the given fixed price and appends a listing event.
func (m *Market) List(ctx context.Context, seller AccountID, id AssetID, price uint64) error {
	reg := m.Ensure(seller)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	// The registry map rejects overwrite before custody is touched, so a
	// duplicate attempt has zero side effects.
	if _, dup := reg.listings[id]; dup {
		return m.reject(ctx, "list", id, ErrDuplicateListing)
	}

	asset, err := m.custody.Withdraw(ctx, seller, id)
	if err != nil {
		return m.reject(ctx, "list", id, err)
	}

	reg.listings[id] = Listing{Price: price, Held: asset}
	m.persistSave(ctx, seller, id, reg.listings[id])
	m.append(ctx, reg.listingLog, ListedEvent{Asset: id, Price: price})

	metrics.ListingsTotal.WithLabelValues(id.Collection).Inc()
	metrics.ActiveListings.Inc()
	logger.Info(ctx, "asset listed",
		zap.Uint64("seller", uint64(seller)),
		zap.Stringer("asset", id),
		zap.Uint64("price", price))
	return nil
}

// Buy settles the listing: transfers the price from buyer to seller, then
// releases the escrowed asset into the buyer's custody and removes the
// listing. The currency transfer is the last fallible step; every mutation
// after it cannot fail, so payment and delivery happen together or not at
// all.
func (m *Market) Buy(ctx context.Context, buyer, seller AccountID, id AssetID) error {
	if buyer == seller {
		return m.reject(ctx, "buy", id, ErrInvalidBuyer)
	}

	reg := m.Ensure(seller)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	l, ok := reg.listings[id]
	if !ok {
		return m.reject(ctx, "buy", id, ErrListingNotFound)
	}

	if err := m.ledger.Transfer(ctx, buyer, seller, l.Price); err != nil {
		return m.reject(ctx, "buy", id, err)
	}

	delete(reg.listings, id)
	if err := m.custody.Deposit(ctx, buyer, l.Held); err != nil {
		// Deposit of a previously withdrawn asset must not fail; surface it
		// loudly if an implementation breaks that contract.
		logger.Error(ctx, "deposit after settlement failed",
			zap.Uint64("buyer", uint64(buyer)), zap.Stringer("asset", id), zap.Error(err))
	}
	m.persistRemove(ctx, seller, id)
	m.append(ctx, reg.buyingLog, SoldEvent{Asset: id})

	metrics.SettlementsTotal.WithLabelValues(id.Collection).Inc()
	metrics.ActiveListings.Dec()
	logger.Info(ctx, "listing settled",
		zap.Uint64("buyer", uint64(buyer)),
		zap.Uint64("seller", uint64(seller)),
		zap.Stringer("asset", id),
		zap.Uint64("price", l.Price))
	return nil
}

// Delist reclaims an un-sold asset: removes the listing and deposits the
// asset back into the seller's custody. No currency moves. Authorization is
// by construction: the registry mutated is the one addressed by the calling
// seller's own identity.
func (m *Market) Delist(ctx context.Context, seller AccountID, id AssetID) error {
	reg := m.Ensure(seller)
	reg.mu.Lock()
	defer reg.mu.Unlock()

	l, ok := reg.listings[id]
	if !ok {
		return m.reject(ctx, "delist", id, ErrListingNotFound)
	}

	delete(reg.listings, id)
	if err := m.custody.Deposit(ctx, seller, l.Held); err != nil {
		logger.Error(ctx, "deposit after delist failed",
			zap.Uint64("seller", uint64(seller)), zap.Stringer("asset", id), zap.Error(err))
	}
	m.persistRemove(ctx, seller, id)
	m.append(ctx, reg.delistingLog, DelistedEvent{Asset: id})

	metrics.DelistsTotal.WithLabelValues(id.Collection).Inc()
	metrics.ActiveListings.Dec()
	logger.Info(ctx, "asset delisted",
		zap.Uint64("seller", uint64(seller)),
		zap.Stringer("asset", id))
	return nil
}

// Listing looks up an active listing without mutating anything.
func (m *Market) Listing(seller AccountID, id AssetID) (Listing, bool) {
	m.mu.RLock()
	reg := m.registries[seller]
	m.mu.RUnlock()
	if reg == nil {
		return Listing{}, false
	}
	return reg.Get(id)
}

// append is fire-and-forget: event streams feed off-system observers and an
// append failure must not roll back a settled operation.
func (m *Market) append(ctx context.Context, log Appender, event any) {
	if log == nil {
		return
	}
	if err := log.Append(ctx, event); err != nil {
		logger.Warn(ctx, "event append failed", zap.Error(err))
	}
}

func (m *Market) openStream(account AccountID, stream string) Appender {
	if m.events == nil {
		return nil
	}
	a, err := m.events.Open(account, stream)
	if err != nil {
		logger.Error(context.Background(), "open event stream failed",
			zap.Uint64("account", uint64(account)),
			zap.String("stream", stream), zap.Error(err))
		return nil
	}
	return a
}

func (m *Market) persistSave(ctx context.Context, seller AccountID, id AssetID, l Listing) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, seller, id, l); err != nil {
		logger.Error(ctx, "listing store save failed",
			zap.Uint64("seller", uint64(seller)), zap.Stringer("asset", id), zap.Error(err))
	}
}

func (m *Market) persistRemove(ctx context.Context, seller AccountID, id AssetID) {
	if m.store == nil {
		return
	}
	if err := m.store.Remove(ctx, seller, id); err != nil {
		logger.Error(ctx, "listing store remove failed",
			zap.Uint64("seller", uint64(seller)), zap.Stringer("asset", id), zap.Error(err))
	}
}

func (m *Market) reject(ctx context.Context, op string, id AssetID, err error) error {
	metrics.RejectsTotal.WithLabelValues(op, rejectReason(err)).Inc()
	logger.Debug(ctx, "operation rejected",
		zap.String("op", op), zap.Stringer("asset", id), zap.Error(err))
	return fmt.Errorf("%s %s: %w", op, id, err)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrAssetNotOwned):
		return "asset_not_owned"
	case errors.Is(err, ErrDuplicateListing):
		return "duplicate_listing"
	case errors.Is(err, ErrListingNotFound):
		return "listing_not_found"
	case errors.Is(err, ErrInvalidBuyer):
		return "invalid_buyer"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "other"
	}
}
