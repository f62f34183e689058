package postgres

import (
	"context"
	"errors"

	dailylimitDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/dailylimit"
	"github.com/frahmantamala/kudos-points/internal/dailylimit"
	"gorm.io/gorm"
)

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

var _ dailylimit.Counter = (*CounterRepository)(nil)

func (r *CounterRepository) Count(ctx context.Context, accountID, day string) (int, error) {
	var row dailylimitDatamodel.DailyLimit
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND date = ?", accountID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.SendCount, nil
}

func (r *CounterRepository) CanSend(ctx context.Context, accountID, day string, dailyCap int) (bool, error) {
	count, err := r.Count(ctx, accountID, day)
	if err != nil {
		return false, err
	}
	return dailylimit.Below(count, dailyCap), nil
}

// RecordSend bumps the (account, day) row by one, creating it with count 1 on the first send.
func (r *CounterRepository) RecordSend(ctx context.Context, accountID, day string) error {
	res := r.db.WithContext(ctx).
		Model(&dailylimitDatamodel.DailyLimit{}).
		Where("account_id = ? AND date = ?", accountID, day).
		Update("send_count", gorm.Expr("send_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&dailylimitDatamodel.DailyLimit{
		AccountID: accountID,
		Date:      day,
		SendCount: 1,
	}).Error
}

// CountsForDay returns the counter of every account that sent on day.
func (r *CounterRepository) CountsForDay(ctx context.Context, day string) (map[string]int, error) {
	var rows []dailylimitDatamodel.DailyLimit
	if err := r.db.WithContext(ctx).Where("date = ?", day).Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.AccountID] = row.SendCount
	}
	return counts, nil
}
