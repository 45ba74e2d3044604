package model

import "time"

// HoldingRow is one custodied asset. The asset identity is the primary key:
// an asset exists in at most one row, so the current holder is unambiguous.
type HoldingRow struct {
	CreatorID  uint64    `gorm:"column:creator_id;primaryKey;not null"`
	Collection string    `gorm:"column:collection;primaryKey;type:varchar(64);not null"`
	Item       string    `gorm:"column:item;primaryKey;type:varchar(64);not null"`
	OwnerID    uint64    `gorm:"column:owner_id;index;not null"`
	Meta       string    `gorm:"column:meta;type:varchar(255)"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (HoldingRow) TableName() string {
	return "holdings"
}
