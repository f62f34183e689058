package department

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/department"
	"github.com/frahmantamala/kudos-points/internal/core/events"
)

// Planner turns the eligible account ids, in stable order, into per-account shares.
type Planner func(accountIDs []string) ([]Share, error)

type Repository interface {
	ListNames(ctx context.Context) ([]string, error)
	Ensure(ctx context.Context, name string) error
	Rankings(ctx context.Context, excluded []string) ([]Ranking, error)
	// Distribute loads the department's eligible accounts and applies the planned shares in one transaction.
	Distribute(ctx context.Context, department, actorID, reason string, plan Planner) ([]Share, error)
	CreateAdjustment(ctx context.Context, adj *departmentDatamodel.Adjustment) error
	ListAdjustments(ctx context.Context, department string) ([]*departmentDatamodel.Adjustment, error)
}

type Service struct {
	repo   Repository
	bus    events.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, bus events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) ListDepartments(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListNames(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	return names, nil
}

// EnsureDepartment registers name if it is not known yet.
func (s *Service) EnsureDepartment(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.repo.Ensure(ctx, name)
}

func (s *Service) Rankings(ctx context.Context) ([]Ranking, error) {
	rankings, err := s.repo.Rankings(ctx, []string{"", internal.PrivilegedDepartment})
	if err != nil {
		s.logger.Error("failed to compute rankings", "error", err)
		return nil, internal.NewInternalError("failed to compute rankings", err)
	}
	if rankings == nil {
		rankings = []Ranking{}
	}
	return rankings, nil
}

// Distribute splits totalPoints across the department's active, non-superadmin members and
// records one transfer per member from the acting admin. Negative totals deduct.
func (s *Service) Distribute(ctx context.Context, actor *auth.User, department string, totalPoints int, reason string) (*DistributionResult, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, internal.NewValidationError("department is required", internal.ErrCodeInvalidDept)
	}
	if totalPoints == 0 {
		return nil, internal.NewValidationError("total points must not be zero", internal.ErrCodeInvalidAmount)
	}
	if strings.TrimSpace(reason) == "" {
		reason = internal.DefaultDistributionReason
	}

	shares, err := s.repo.Distribute(ctx, department, actor.ID, reason, func(accountIDs []string) ([]Share, error) {
		if len(accountIDs) == 0 {
			return nil, internal.ErrNoEligibleMembers
		}
		return SplitEvenly(accountIDs, totalPoints), nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("distribution failed", "error", err, "department", department, "total_points", totalPoints)
		return nil, internal.NewInternalError("failed to distribute points", err)
	}

	s.logger.Info("points distributed", "department", department, "total_points", totalPoints, "recipients", len(shares), "actor_id", actor.ID)
	s.publish(ctx, events.NewPointsDistributedEvent(department, totalPoints, len(shares), actor.ID))

	return &DistributionResult{
		Department:  department,
		TotalPoints: totalPoints,
		Reason:      reason,
		Recipients:  len(shares),
		Shares:      shares,
	}, nil
}

// AdjustDepartmentRecord appends an audit row. Balances are not touched.
func (s *Service) AdjustDepartmentRecord(ctx context.Context, actor *auth.User, department string, amount int, reason string) (*Adjustment, error) {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return nil, err
	}
	department = strings.TrimSpace(department)
	v := validation.NewValidator()
	v.Field("department", department).Required().NotIn(internal.ErrCodeInvalidDept, internal.PrivilegedDepartment)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	row := &departmentDatamodel.Adjustment{
		Department:       department,
		AdjustmentAmount: amount,
		Reason:           reason,
		AdjustedBy:       actor.ID,
	}
	if err := s.repo.CreateAdjustment(ctx, row); err != nil {
		s.logger.Error("failed to record adjustment", "error", err, "department", department)
		return nil, internal.NewInternalError("failed to record adjustment", err)
	}

	s.logger.Info("department adjustment recorded", "department", department, "amount", amount, "actor_id", actor.ID)
	s.publish(ctx, events.NewDepartmentAdjustedEvent(department, amount, actor.ID))
	return AdjustmentFromDataModel(row), nil
}

func (s *Service) ListAdjustments(ctx context.Context, actor *auth.User, department string) ([]*Adjustment, error) {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListAdjustments(ctx, strings.TrimSpace(department))
	if err != nil {
		s.logger.Error("failed to list adjustments", "error", err)
		return nil, internal.NewInternalError("failed to list adjustments", err)
	}

	result := make([]*Adjustment, 0, len(rows))
	for _, row := range rows {
		result = append(result, AdjustmentFromDataModel(row))
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
