// Package custody implements the asset custody collaborator: per-account
// holdings of unique non-fungible assets, with withdraw/deposit moving an
// asset between holders exactly once.
package custody

import (
	"context"
	"fmt"
	"sync"

	"gophermart.com/internal/market"
)

// Vault is the in-memory custody service. Holdings are partitioned per
// owner; one mutex guards the whole vault, which is plenty for a collaborator
// whose calls are already serialized per listing operation.
type Vault struct {
	mu       sync.Mutex
	holdings map[market.AccountID]map[market.AssetID]market.Asset
}

func NewVault() *Vault {
	return &Vault{holdings: make(map[market.AccountID]map[market.AssetID]market.Asset)}
}

// Issue mints a fresh asset into owner's holdings. Fails when the asset id
// already exists anywhere: asset ids are globally unique.
func (v *Vault) Issue(ctx context.Context, owner market.AccountID, id market.AssetID, meta string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, hs := range v.holdings {
		if _, exists := hs[id]; exists {
			return fmt.Errorf("custody: asset %s already issued", id)
		}
	}

	hs := v.holdings[owner]
	if hs == nil {
		hs = make(map[market.AssetID]market.Asset)
		v.holdings[owner] = hs
	}
	hs[id] = market.Asset{ID: id, Meta: meta}
	return nil
}

// Withdraw removes the asset from owner's holdings and returns it. A second
// withdraw of the same asset, by anyone, fails: the balance is already zero.
func (v *Vault) Withdraw(ctx context.Context, owner market.AccountID, id market.AssetID) (market.Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hs := v.holdings[owner]
	asset, ok := hs[id]
	if !ok {
		return market.Asset{}, fmt.Errorf("withdraw %s from %d: %w", id, owner, market.ErrAssetNotOwned)
	}
	delete(hs, id)
	return asset, nil
}

// Deposit places a previously withdrawn asset into recipient's holdings.
func (v *Vault) Deposit(ctx context.Context, recipient market.AccountID, asset market.Asset) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	hs := v.holdings[recipient]
	if hs == nil {
		hs = make(map[market.AssetID]market.Asset)
		v.holdings[recipient] = hs
	}
	hs[asset.ID] = asset
	return nil
}

// Holds reports whether owner currently holds the asset.
func (v *Vault) Holds(owner market.AccountID, id market.AssetID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.holdings[owner][id]
	return ok
}

// Holdings copies owner's current holdings.
func (v *Vault) Holdings(owner market.AccountID) []market.Asset {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]market.Asset, 0, len(v.holdings[owner]))
	for _, a := range v.holdings[owner] {
		out = append(out, a)
	}
	return out
}
