package mysql

import (
	"context"
	"errors"

	"gophermart.com/internal/custody/repo"
	"gophermart.com/internal/custody/repo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type holdingsRepo struct {
	db *gorm.DB
}

func NewHoldingsRepo(db *gorm.DB) repo.HoldingsRepo {
	return &holdingsRepo{db: db}
}

func (r *holdingsRepo) Insert(ctx context.Context, row model.HoldingRow) error {
	return r.db.WithContext(ctx).Create(&row).Error
}

// Withdraw locks the row, verifies the holder and deletes it in one
// transaction, so two concurrent withdraws of the same asset cannot both
// succeed.
func (r *holdingsRepo) Withdraw(ctx context.Context, ownerID uint64, creatorID uint64, collection, item string) (model.HoldingRow, error) {
	var row model.HoldingRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("creator_id = ? AND collection = ? AND item = ? AND owner_id = ?",
				creatorID, collection, item, ownerID).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotHeld
			}
			return err
		}
		return tx.Where("creator_id = ? AND collection = ? AND item = ?",
			creatorID, collection, item).
			Delete(&model.HoldingRow{}).Error
	})
	if err != nil {
		return model.HoldingRow{}, err
	}
	return row, nil
}

func (r *holdingsRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.HoldingRow, error) {
	if ownerID == 0 {
		return []model.HoldingRow{}, nil
	}
	var rows []model.HoldingRow
	err := r.db.WithContext(ctx).
		Model(&model.HoldingRow{}).
		Where("owner_id = ?", ownerID).
		Order("creator_id ASC, collection ASC, item ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
