package market_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gophermart.com/internal/custody"
	"gophermart.com/internal/eventlog"
	"gophermart.com/internal/ledger"
	"gophermart.com/internal/market"
)

type fixture struct {
	market *market.Market
	vault  *custody.Vault
	ledger *ledger.MemLedger
	events *eventlog.MemLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vault:  custody.NewVault(),
		ledger: ledger.NewMemLedger(),
		events: eventlog.NewMemLog(),
	}
	f.market = market.New(market.Deps{
		Custody: f.vault,
		Ledger:  f.ledger,
		Events:  f.events,
	})
	return f
}

func (f *fixture) issue(t *testing.T, owner market.AccountID, id market.AssetID) {
	t.Helper()
	require.NoError(t, f.vault.Issue(context.Background(), owner, id, "ipfs://"+id.Name))
}

func (f *fixture) balance(t *testing.T, account market.AccountID) uint64 {
	t.Helper()
	b, err := f.ledger.BalanceOf(context.Background(), account)
	require.NoError(t, err)
	return b
}

var (
	seller = market.AccountID(1)
	buyer  = market.AccountID(2)
	assetA = market.AssetID{Creator: 1, Collection: "kitties", Name: "alpha"}
)

func TestListEscrowsAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)

	require.NoError(t, f.market.List(ctx, seller, assetA, 100))

	// asset left the seller's custody and sits in escrow at the fixed price
	assert.False(t, f.vault.Holds(seller, assetA))
	l, ok := f.market.Listing(seller, assetA)
	require.True(t, ok)
	assert.Equal(t, uint64(100), l.Price)
	assert.Equal(t, assetA, l.Held.ID)

	entries := f.events.Entries(seller, market.StreamListing)
	require.Len(t, entries, 1)
	var ev market.ListedEvent
	require.NoError(t, json.Unmarshal(entries[0].Event, &ev))
	assert.Equal(t, market.ListedEvent{Asset: assetA, Price: 100}, ev)
}

func TestListRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))

	err := f.market.List(ctx, seller, assetA, 200)
	require.ErrorIs(t, err, market.ErrDuplicateListing)

	// original listing untouched
	l, ok := f.market.Listing(seller, assetA)
	require.True(t, ok)
	assert.Equal(t, uint64(100), l.Price)
	assert.Len(t, f.events.Entries(seller, market.StreamListing), 1)
}

func TestListRejectsUnownedAsset(t *testing.T) {
	f := newFixture(t)

	err := f.market.List(context.Background(), seller, assetA, 100)
	require.ErrorIs(t, err, market.ErrAssetNotOwned)

	_, ok := f.market.Listing(seller, assetA)
	assert.False(t, ok)
	assert.Empty(t, f.events.Entries(seller, market.StreamListing))
}

func TestListRejectsAssetHeldByAnotherAccount(t *testing.T) {
	f := newFixture(t)
	f.issue(t, buyer, assetA)

	err := f.market.List(context.Background(), seller, assetA, 100)
	require.ErrorIs(t, err, market.ErrAssetNotOwned)
	assert.True(t, f.vault.Holds(buyer, assetA))
}

func TestBuySettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))
	require.NoError(t, f.ledger.Mint(ctx, buyer, 100))

	require.NoError(t, f.market.Buy(ctx, buyer, seller, assetA))

	// payment, delivery and registry removal all landed together
	assert.Equal(t, uint64(100), f.balance(t, seller))
	assert.Equal(t, uint64(0), f.balance(t, buyer))
	assert.True(t, f.vault.Holds(buyer, assetA))
	_, ok := f.market.Listing(seller, assetA)
	assert.False(t, ok)

	entries := f.events.Entries(seller, market.StreamBuying)
	require.Len(t, entries, 1)
	var ev market.SoldEvent
	require.NoError(t, json.Unmarshal(entries[0].Event, &ev))
	assert.Equal(t, assetA, ev.Asset)
}

func TestBuyRejectsSelfPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))
	require.NoError(t, f.ledger.Mint(ctx, seller, 500))

	err := f.market.Buy(ctx, seller, seller, assetA)
	require.ErrorIs(t, err, market.ErrInvalidBuyer)

	assert.Equal(t, uint64(500), f.balance(t, seller))
	_, ok := f.market.Listing(seller, assetA)
	assert.True(t, ok)
	assert.Empty(t, f.events.Entries(seller, market.StreamBuying))
}

func TestBuyRejectsUnknownListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ledger.Mint(ctx, buyer, 100))

	err := f.market.Buy(ctx, buyer, seller, assetA)
	require.ErrorIs(t, err, market.ErrListingNotFound)
	assert.Equal(t, uint64(100), f.balance(t, buyer))
}

func TestBuyRejectsInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))
	require.NoError(t, f.ledger.Mint(ctx, buyer, 90))

	err := f.market.Buy(ctx, buyer, seller, assetA)
	require.ErrorIs(t, err, market.ErrInsufficientFunds)

	// asset stays escrowed, nothing moved
	assert.Equal(t, uint64(90), f.balance(t, buyer))
	assert.Equal(t, uint64(0), f.balance(t, seller))
	assert.False(t, f.vault.Holds(buyer, assetA))
	l, ok := f.market.Listing(seller, assetA)
	require.True(t, ok)
	assert.Equal(t, uint64(100), l.Price)
}

func TestDelistReturnsAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))

	require.NoError(t, f.market.Delist(ctx, seller, assetA))

	assert.True(t, f.vault.Holds(seller, assetA))
	_, ok := f.market.Listing(seller, assetA)
	assert.False(t, ok)
	// no currency moved either way
	assert.Equal(t, uint64(0), f.balance(t, seller))
	assert.Equal(t, uint64(0), f.balance(t, buyer))

	entries := f.events.Entries(seller, market.StreamDelisting)
	require.Len(t, entries, 1)
	var ev market.DelistedEvent
	require.NoError(t, json.Unmarshal(entries[0].Event, &ev))
	assert.Equal(t, assetA, ev.Asset)
}

func TestDelistRejectsUnknownListing(t *testing.T) {
	f := newFixture(t)

	err := f.market.Delist(context.Background(), seller, assetA)
	require.ErrorIs(t, err, market.ErrListingNotFound)
}

func TestRelistAfterDelist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))
	require.NoError(t, f.market.Delist(ctx, seller, assetA))

	require.NoError(t, f.market.List(ctx, seller, assetA, 250))
	l, ok := f.market.Listing(seller, assetA)
	require.True(t, ok)
	assert.Equal(t, uint64(250), l.Price)
}

func TestResaleByNewOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))
	require.NoError(t, f.ledger.Mint(ctx, buyer, 100))
	require.NoError(t, f.market.Buy(ctx, buyer, seller, assetA))

	// the asset now lives in the buyer's registry, not the original seller's
	require.NoError(t, f.market.List(ctx, buyer, assetA, 300))
	_, ok := f.market.Listing(seller, assetA)
	assert.False(t, ok)
	l, ok := f.market.Listing(buyer, assetA)
	require.True(t, ok)
	assert.Equal(t, uint64(300), l.Price)
}

func TestConcurrentBuysSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.issue(t, seller, assetA)
	require.NoError(t, f.market.List(ctx, seller, assetA, 100))

	const buyers = 16
	for i := 0; i < buyers; i++ {
		require.NoError(t, f.ledger.Mint(ctx, market.AccountID(100+i), 100))
	}

	start := make(chan struct{})
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = f.market.Buy(ctx, market.AccountID(100+i), seller, assetA)
		}(i)
	}
	close(start)
	wg.Wait()

	var wins int
	var winner market.AccountID
	for i, err := range errs {
		if err == nil {
			wins++
			winner = market.AccountID(100 + i)
			continue
		}
		require.ErrorIs(t, err, market.ErrListingNotFound)
	}
	require.Equal(t, 1, wins)
	assert.True(t, f.vault.Holds(winner, assetA))
	assert.Equal(t, uint64(100), f.balance(t, seller))
	assert.Equal(t, uint64(0), f.balance(t, winner))
}

func TestEnsureCreatesRegistryOnce(t *testing.T) {
	f := newFixture(t)

	const n = 64
	regs := make([]*market.Registry, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			regs[i] = f.market.Ensure(seller)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, regs[0], regs[i])
	}
	assert.Equal(t, 0, regs[0].Len())
}
