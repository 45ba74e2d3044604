package model

import "time"

type BalanceRow struct {
	OwnerID   uint64    `gorm:"column:owner_id;primaryKey;not null"`
	Amount    uint64    `gorm:"column:amount;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BalanceRow) TableName() string {
	return "balances"
}
