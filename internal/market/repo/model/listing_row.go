package model

import "time"

// ListingRow mirrors one escrowed listing. Keyed by seller + asset identity:
// the same asset can reappear under another seller after a resale, but never
// twice at once (custody withdraw guards that upstream).
type ListingRow struct {
	SellerID   uint64    `gorm:"column:seller_id;primaryKey;not null"`
	CreatorID  uint64    `gorm:"column:creator_id;primaryKey;not null"`
	Collection string    `gorm:"column:collection;primaryKey;type:varchar(64);not null"`
	Item       string    `gorm:"column:item;primaryKey;type:varchar(64);not null"`
	Price      uint64    `gorm:"column:price;not null"`
	Meta       string    `gorm:"column:meta;type:varchar(255)"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ListingRow) TableName() string {
	return "listings"
}
