package repo

import (
	"context"
	"errors"

	"gophermart.com/internal/custody/repo/model"
)

// ErrNotHeld is returned when a withdraw targets an asset the owner does not
// hold; the custody store maps it onto the marketplace error.
var ErrNotHeld = errors.New("custody repo: asset not held by owner")

type HoldingsRepo interface {
	// Insert creates the holding row; fails on duplicate asset identity.
	Insert(ctx context.Context, row model.HoldingRow) error
	// Withdraw deletes the row for (owner, asset) and returns it, failing
	// with ErrNotHeld when owner does not hold the asset.
	Withdraw(ctx context.Context, ownerID uint64, creatorID uint64, collection, item string) (model.HoldingRow, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.HoldingRow, error)
}

type Repo interface {
	HoldingsRepo
}
