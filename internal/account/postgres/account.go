package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/kudos-points/internal/account"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/database"
	dailylimitPostgres "github.com/frahmantamala/kudos-points/internal/dailylimit/postgres"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*accountDatamodel.Account, error) {
	var acc accountDatamodel.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) ListActive(ctx context.Context) ([]*accountDatamodel.Account, error) {
	var accounts []*accountDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *AccountRepository) Create(ctx context.Context, acc *accountDatamodel.Account) error {
	err := r.db.WithContext(ctx).Create(acc).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return account.ErrDuplicateID
	}
	return err
}

// Update applies fields to one account and reports whether it exists.
func (r *AccountRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&accountDatamodel.Account{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type receivedRow struct {
	ReceiverID string `db:"receiver_id"`
	Total      int    `db:"total"`
}

func (r *AccountRepository) ReceivedSince(ctx context.Context, since time.Time) (map[string]int, error) {
	x, err := database.SQLX(r.db)
	if err != nil {
		return nil, err
	}

	var rows []receivedRow
	query := x.Rebind(`SELECT receiver_id, COALESCE(SUM(points), 0) AS total
		FROM transfers
		WHERE created_at >= ?
		GROUP BY receiver_id`)
	if err := x.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.ReceiverID] = row.Total
	}
	return totals, nil
}

func (r *AccountRepository) SentCountsForDay(ctx context.Context, day string) (map[string]int, error) {
	return dailylimitPostgres.NewCounterRepository(r.db).CountsForDay(ctx, day)
}
