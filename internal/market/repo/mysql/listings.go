package mysql

import (
	"context"

	"gophermart.com/internal/market"
	"gophermart.com/internal/market/repo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type listingsStore struct {
	db *gorm.DB
}

// NewListingsStore returns the mysql-backed durability mirror for registries.
func NewListingsStore(db *gorm.DB) market.ListingStore {
	return &listingsStore{db: db}
}

// Save upserts so a replayed write-through is idempotent.
func (s *listingsStore) Save(ctx context.Context, seller market.AccountID, id market.AssetID, l market.Listing) error {
	row := model.ListingRow{
		SellerID:   uint64(seller),
		CreatorID:  uint64(id.Creator),
		Collection: id.Collection,
		Item:       id.Name,
		Price:      l.Price,
		Meta:       l.Held.Meta,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *listingsStore) Remove(ctx context.Context, seller market.AccountID, id market.AssetID) error {
	return s.db.WithContext(ctx).
		Where("seller_id = ? AND creator_id = ? AND collection = ? AND item = ?",
			uint64(seller), uint64(id.Creator), id.Collection, id.Name).
		Delete(&model.ListingRow{}).Error
}

func (s *listingsStore) LoadBySeller(ctx context.Context, seller market.AccountID) (map[market.AssetID]market.Listing, error) {
	var rows []model.ListingRow
	err := s.db.WithContext(ctx).
		Model(&model.ListingRow{}).
		Where("seller_id = ?", uint64(seller)).
		Order("creator_id ASC, collection ASC, item ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[market.AssetID]market.Listing, len(rows))
	for _, row := range rows {
		id := market.AssetID{
			Creator:    market.AccountID(row.CreatorID),
			Collection: row.Collection,
			Name:       row.Item,
		}
		out[id] = market.Listing{
			Price: row.Price,
			Held:  market.Asset{ID: id, Meta: row.Meta},
		}
	}
	return out, nil
}
