package postgres

import (
	"context"
	"time"

	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/reset"
	"gorm.io/gorm"
)

type ResetRepository struct {
	db *gorm.DB
}

func NewResetRepository(db *gorm.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

var _ reset.Repository = (*ResetRepository)(nil)

func (r *ResetRepository) ResetActiveBalances(ctx context.Context, baseline int) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&accountDatamodel.Account{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{
				"point_balance": baseline,
				"updated_at":    time.Now(),
			})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
