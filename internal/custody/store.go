package custody

import (
	"context"
	"errors"
	"fmt"

	"gophermart.com/internal/custody/repo"
	"gophermart.com/internal/custody/repo/model"
	"gophermart.com/internal/market"
)

// Store is the database-backed custody service. It satisfies the same
// contract as Vault, with holdings living in the holdings table instead of
// process memory.
type Store struct {
	repo repo.HoldingsRepo
}

func NewStore(r repo.HoldingsRepo) *Store {
	return &Store{repo: r}
}

func (s *Store) Issue(ctx context.Context, owner market.AccountID, id market.AssetID, meta string) error {
	return s.repo.Insert(ctx, model.HoldingRow{
		CreatorID:  uint64(id.Creator),
		Collection: id.Collection,
		Item:       id.Name,
		OwnerID:    uint64(owner),
		Meta:       meta,
	})
}

func (s *Store) Withdraw(ctx context.Context, owner market.AccountID, id market.AssetID) (market.Asset, error) {
	row, err := s.repo.Withdraw(ctx, uint64(owner), uint64(id.Creator), id.Collection, id.Name)
	if err != nil {
		if errors.Is(err, repo.ErrNotHeld) {
			return market.Asset{}, fmt.Errorf("withdraw %s from %d: %w", id, owner, market.ErrAssetNotOwned)
		}
		return market.Asset{}, err
	}
	return market.Asset{ID: id, Meta: row.Meta}, nil
}

func (s *Store) Deposit(ctx context.Context, recipient market.AccountID, asset market.Asset) error {
	return s.repo.Insert(ctx, model.HoldingRow{
		CreatorID:  uint64(asset.ID.Creator),
		Collection: asset.ID.Collection,
		Item:       asset.ID.Name,
		OwnerID:    uint64(recipient),
		Meta:       asset.Meta,
	})
}

// Holdings lists the assets currently held by owner.
func (s *Store) Holdings(ctx context.Context, owner market.AccountID) ([]market.Asset, error) {
	rows, err := s.repo.ListByOwner(ctx, uint64(owner))
	if err != nil {
		return nil, err
	}
	out := make([]market.Asset, 0, len(rows))
	for _, row := range rows {
		out = append(out, market.Asset{
			ID: market.AssetID{
				Creator:    market.AccountID(row.CreatorID),
				Collection: row.Collection,
				Name:       row.Item,
			},
			Meta: row.Meta,
		})
	}
	return out, nil
}
