package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/circulation"
	"github.com/frahmantamala/kudos-points/internal/core/database"
	systemconfigDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/systemconfig"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CirculationRepository struct {
	db *gorm.DB
}

func NewCirculationRepository(db *gorm.DB) *CirculationRepository {
	return &CirculationRepository{db: db}
}

var _ circulation.Repository = (*CirculationRepository)(nil)

func (r *CirculationRepository) PinnedTarget(ctx context.Context) (int64, bool, error) {
	var row systemconfigDatamodel.SystemConfig
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: internal.CirculationTargetKey}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	value, err := strconv.ParseInt(row.Value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s value %q: %w", internal.CirculationTargetKey, row.Value, err)
	}
	return value, true, nil
}

// PinTarget upserts the single circulation row.
func (r *CirculationRepository) PinTarget(ctx context.Context, amount int, adminID string) error {
	row := &systemconfigDatamodel.SystemConfig{
		Key:       internal.CirculationTargetKey,
		Value:     strconv.Itoa(amount),
		UpdatedBy: &adminID,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
	}).Create(row).Error
}

func (r *CirculationRepository) reader() (*sqlx.DB, error) {
	return database.SQLX(r.db)
}

func (r *CirculationRepository) SumActiveBalances(ctx context.Context) (int64, error) {
	x, err := r.reader()
	if err != nil {
		return 0, err
	}
	var total int64
	query := x.Rebind(`SELECT COALESCE(SUM(point_balance), 0)
		FROM accounts
		WHERE is_active = ? AND role <> ?`)
	err = x.GetContext(ctx, &total, query, true, auth.RoleSuperAdmin)
	return total, err
}

func (r *CirculationRepository) CountActiveAccounts(ctx context.Context) (int64, error) {
	x, err := r.reader()
	if err != nil {
		return 0, err
	}
	var n int64
	err = x.GetContext(ctx, &n, x.Rebind(`SELECT COUNT(*) FROM accounts WHERE is_active = ?`), true)
	return n, err
}

func (r *CirculationRepository) CountTransfersSince(ctx context.Context, since time.Time) (int64, error) {
	x, err := r.reader()
	if err != nil {
		return 0, err
	}
	var n int64
	err = x.GetContext(ctx, &n, x.Rebind(`SELECT COUNT(*) FROM transfers WHERE created_at >= ?`), since)
	return n, err
}

func (r *CirculationRepository) CountActiveDepartments(ctx context.Context, excluded []string) (int64, error) {
	x, err := r.reader()
	if err != nil {
		return 0, err
	}
	if len(excluded) == 0 {
		excluded = []string{""}
	}

	query, args, err := sqlx.In(`SELECT COUNT(DISTINCT department)
		FROM accounts
		WHERE is_active = ? AND department NOT IN (?)`, true, excluded)
	if err != nil {
		return 0, err
	}

	var n int64
	err = x.GetContext(ctx, &n, x.Rebind(query), args...)
	return n, err
}
