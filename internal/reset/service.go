package reset

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/events"
)

type Repository interface {
	// ResetActiveBalances sets every active balance to baseline and returns the rows touched.
	ResetActiveBalances(ctx context.Context, baseline int) (int64, error)
}

type Result struct {
	AccountsReset int64 `json:"accounts_reset"`
	Baseline      int   `json:"baseline"`
}

type Service struct {
	repo   Repository
	policy internal.Policy
	bus    events.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, policy internal.Policy, bus events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy.WithDefaults(),
		bus:    bus,
		logger: logger,
	}
}

// ResetAll puts every active account back at the baseline. No transfers are written and
// daily counters and adjustment history are left as they are.
func (s *Service) ResetAll(ctx context.Context, actor *auth.User) (*Result, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}

	n, err := s.repo.ResetActiveBalances(ctx, s.policy.BaselineBalance)
	if err != nil {
		s.logger.Error("balance reset failed", "error", err)
		return nil, internal.NewInternalError("failed to reset balances", err)
	}

	s.logger.Warn("balances reset", "accounts", n, "baseline", s.policy.BaselineBalance, "actor_id", actor.ID)
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewBalancesResetEvent(n, s.policy.BaselineBalance, actor.ID)); err != nil {
			s.logger.Warn("failed to publish event", "error", err)
		}
	}

	return &Result{AccountsReset: n, Baseline: s.policy.BaselineBalance}, nil
}
