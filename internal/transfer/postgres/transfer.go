package postgres

import (
	"context"
	"errors"

	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
	"github.com/frahmantamala/kudos-points/internal/dailylimit"
	dailylimitPostgres "github.com/frahmantamala/kudos-points/internal/dailylimit/postgres"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

var _ transfer.Repository = (*TransferRepository)(nil)

func (r *TransferRepository) hydrated(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver")
}

func (r *TransferRepository) GetByID(ctx context.Context, id int64) (*transferDatamodel.Transfer, error) {
	var t transferDatamodel.Transfer
	err := r.hydrated(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepository) List(ctx context.Context, limit, offset int) ([]*transferDatamodel.Transfer, error) {
	var rows []*transferDatamodel.Transfer
	err := r.hydrated(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *TransferRepository) ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*transferDatamodel.Transfer, error) {
	var rows []*transferDatamodel.Transfer
	err := r.hydrated(ctx).
		Where("sender_id = ? OR receiver_id = ?", accountID, accountID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// RunInTx hands fn a ledger bound to a single gorm transaction; any error rolls everything back.
func (r *TransferRepository) RunInTx(ctx context.Context, fn func(tx transfer.LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx *gorm.DB
}

// LockAccounts takes row locks on every id in one statement, in ascending id order, so
// concurrent sends and distributions always acquire them in the same sequence.
func (l *ledgerTx) LockAccounts(ctx context.Context, ids ...string) (map[string]*accountDatamodel.Account, error) {
	var rows []*accountDatamodel.Account
	if err := lockAccounts(l.tx.WithContext(ctx), ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	locked := make(map[string]*accountDatamodel.Account, len(rows))
	for _, acc := range rows {
		locked[acc.ID] = acc
	}
	return locked, nil
}

func lockAccounts(tx *gorm.DB, ids []string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC")
}

func (l *ledgerTx) Insert(ctx context.Context, t *transferDatamodel.Transfer) error {
	return l.tx.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (l *ledgerTx) Debit(ctx context.Context, id string, points int) (bool, error) {
	res := l.tx.WithContext(ctx).
		Model(&accountDatamodel.Account{}).
		Where("id = ? AND point_balance >= ?", id, points).
		Update("point_balance", gorm.Expr("point_balance - ?", points))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (l *ledgerTx) Credit(ctx context.Context, id string, points int) error {
	return l.tx.WithContext(ctx).
		Model(&accountDatamodel.Account{}).
		Where("id = ?", id).
		Update("point_balance", gorm.Expr("point_balance + ?", points)).Error
}

func (l *ledgerTx) Counter() dailylimit.Counter {
	return dailylimitPostgres.NewCounterRepository(l.tx)
}
