package circulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/events"
)

type Repository interface {
	// PinnedTarget returns the stored circulation target and whether one exists.
	PinnedTarget(ctx context.Context) (int64, bool, error)
	PinTarget(ctx context.Context, amount int, adminID string) error
	SumActiveBalances(ctx context.Context) (int64, error)
	CountActiveAccounts(ctx context.Context) (int64, error)
	CountTransfersSince(ctx context.Context, since time.Time) (int64, error)
	CountActiveDepartments(ctx context.Context, excluded []string) (int64, error)
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

// TotalCirculation prefers the pinned target over the live sum of balances.
func (s *Service) TotalCirculation(ctx context.Context) (*CirculationResponse, error) {
	pinned, ok, err := s.repo.PinnedTarget(ctx)
	if err != nil {
		s.logger.Error("failed to read circulation target", "error", err)
		return nil, internal.NewInternalError("failed to read circulation", err)
	}
	if ok {
		return &CirculationResponse{TotalCirculation: pinned, Pinned: true}, nil
	}

	sum, err := s.repo.SumActiveBalances(ctx)
	if err != nil {
		s.logger.Error("failed to sum balances", "error", err)
		return nil, internal.NewInternalError("failed to read circulation", err)
	}
	return &CirculationResponse{TotalCirculation: sum}, nil
}

func (s *Service) SetCirculation(ctx context.Context, actor *auth.User, amount int) error {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return err
	}
	if amount < 0 {
		return internal.NewValidationError("circulation target cannot be negative", internal.ErrCodeInvalidAmount)
	}

	if err := s.repo.PinTarget(ctx, amount, actor.ID); err != nil {
		s.logger.Error("failed to pin circulation", "error", err, "amount", amount)
		return internal.NewInternalError("failed to set circulation", err)
	}

	s.logger.Info("circulation pinned", "amount", amount, "actor_id", actor.ID)
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewCirculationPinnedEvent(amount, actor.ID)); err != nil {
			s.logger.Warn("failed to publish event", "error", err)
		}
	}
	return nil
}

func (s *Service) SystemStats(ctx context.Context, actor *auth.User) (*SystemStats, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}

	var (
		stats SystemStats
		err   error
	)
	if stats.TotalUsers, err = s.repo.CountActiveAccounts(ctx); err != nil {
		return nil, internal.NewInternalError("failed to count accounts", err)
	}
	if stats.TodayTransactions, err = s.repo.CountTransfersSince(ctx, internal.StartOfDay(time.Now())); err != nil {
		return nil, internal.NewInternalError("failed to count transfers", err)
	}
	excluded := []string{"", internal.PrivilegedDepartment, internal.UnassignedDepartment}
	if stats.ActiveDepartments, err = s.repo.CountActiveDepartments(ctx, excluded); err != nil {
		return nil, internal.NewInternalError("failed to count departments", err)
	}

	circulation, err := s.TotalCirculation(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalCirculation = circulation.TotalCirculation
	return &stats, nil
}
