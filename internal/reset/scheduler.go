package reset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/robfig/cron/v3"
)

// Scheduler runs ResetAll on a cron schedule as a system superadmin.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	actor   *auth.User
	logger  *slog.Logger
}

func NewScheduler(service *Service, schedule, systemActorID string, logger *slog.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{
		cron:    c,
		service: service,
		actor:   &auth.User{ID: systemActorID, Role: auth.RoleSuperAdmin},
		logger:  logger,
	}

	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	result, err := s.service.ResetAll(context.Background(), s.actor)
	if err != nil {
		s.logger.Error("scheduled reset failed", "error", err)
		return
	}
	s.logger.Info("scheduled reset completed", "accounts", result.AccountsReset)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("reset scheduled", "next_run", entry.Next)
	}
}

// Stop waits for a running reset to finish or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
