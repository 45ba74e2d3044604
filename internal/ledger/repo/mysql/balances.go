package mysql

import (
	"context"
	"errors"

	"gophermart.com/internal/ledger/repo"
	"gophermart.com/internal/ledger/repo/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type balancesRepo struct {
	db *gorm.DB
}

func NewBalancesRepo(db *gorm.DB) repo.BalancesRepo {
	return &balancesRepo{db: db}
}

func (r *balancesRepo) GetBalance(ctx context.Context, ownerID uint64) (uint64, error) {
	var row model.BalanceRow
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Amount, nil
}

func (r *balancesRepo) Credit(ctx context.Context, ownerID uint64, amount uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"amount": gorm.Expr("amount + ?", amount)}),
		}).
		Create(&model.BalanceRow{OwnerID: ownerID, Amount: amount}).Error
}

// Transfer runs debit and credit in one transaction. The debit is guarded in
// SQL (amount >= ?), so the balance check and the deduction are atomic and
// RowsAffected == 0 is exactly the insufficient-funds case.
func (r *balancesRepo) Transfer(ctx context.Context, payerID, payeeID uint64, amount uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.BalanceRow{}).
			Where("owner_id = ? AND amount >= ?", payerID, amount).
			UpdateColumn("amount", gorm.Expr("amount - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrInsufficient
		}

		res = tx.Model(&model.BalanceRow{}).
			Where("owner_id = ?", payeeID).
			UpdateColumn("amount", gorm.Expr("amount + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Create(&model.BalanceRow{OwnerID: payeeID, Amount: amount}).Error
		}
		return nil
	})
}
