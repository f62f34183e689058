package postgres

import (
	"context"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/database"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	departmentDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/department"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
	"github.com/frahmantamala/kudos-points/internal/department"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

var _ department.Repository = (*DepartmentRepository)(nil)

func (r *DepartmentRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Order("name ASC").
		Pluck("name", &names).Error
	return names, err
}

func (r *DepartmentRepository) Ensure(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&departmentDatamodel.Department{Name: name}).Error
}

func (r *DepartmentRepository) Rankings(ctx context.Context, excluded []string) ([]department.Ranking, error) {
	x, err := database.SQLX(r.db)
	if err != nil {
		return nil, err
	}
	if len(excluded) == 0 {
		excluded = []string{""}
	}

	query, args, err := sqlx.In(`SELECT department,
			COALESCE(SUM(point_balance), 0) AS total_points,
			COUNT(*) AS member_count
		FROM accounts
		WHERE is_active = ? AND role <> ? AND department NOT IN (?)
		GROUP BY department
		ORDER BY total_points DESC, department ASC`, true, auth.RoleSuperAdmin, excluded)
	if err != nil {
		return nil, err
	}

	var rankings []department.Ranking
	if err := x.SelectContext(ctx, &rankings, x.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rankings, nil
}

func (r *DepartmentRepository) Distribute(ctx context.Context, dept, actorID, reason string, plan department.Planner) ([]department.Share, error) {
	var shares []department.Share

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the acting admin is locked with the members because every transfer row references it
		var locked []accountDatamodel.Account
		if err := lockDistribution(tx, dept, actorID).Find(&locked).Error; err != nil {
			return err
		}

		ids := make([]string, 0, len(locked))
		for _, acc := range locked {
			if acc.Department == dept && acc.IsActive && acc.Role != auth.RoleSuperAdmin {
				ids = append(ids, acc.ID)
			}
		}

		planned, err := plan(ids)
		if err != nil {
			return err
		}

		records := make([]*transferDatamodel.Transfer, 0, len(planned))
		for _, share := range planned {
			if err := tx.Model(&accountDatamodel.Account{}).
				Where("id = ?", share.AccountID).
				Update("point_balance", gorm.Expr("point_balance + ?", share.Points)).Error; err != nil {
				return err
			}
			message := reason
			records = append(records, &transferDatamodel.Transfer{
				SenderID:   actorID,
				ReceiverID: share.AccountID,
				Points:     share.Points,
				Message:    &message,
			})
		}
		if len(records) > 0 {
			if err := tx.Omit(clause.Associations).Create(&records).Error; err != nil {
				return err
			}
		}

		shares = planned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func lockDistribution(tx *gorm.DB, dept, actorID string) *gorm.DB {
	return tx.Select("id", "department", "is_active", "role").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? OR (department = ? AND is_active = ? AND role <> ?)", actorID, dept, true, auth.RoleSuperAdmin).
		Order("id ASC")
}

func (r *DepartmentRepository) CreateAdjustment(ctx context.Context, adj *departmentDatamodel.Adjustment) error {
	return r.db.WithContext(ctx).Create(adj).Error
}

func (r *DepartmentRepository) ListAdjustments(ctx context.Context, dept string) ([]*departmentDatamodel.Adjustment, error) {
	var rows []*departmentDatamodel.Adjustment
	q := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if dept != "" {
		q = q.Where("department = ?", dept)
	}
	err := q.Find(&rows).Error
	return rows, err
}
