package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/events"
	"github.com/frahmantamala/kudos-points/internal/dailylimit"
)

// ErrDuplicateID is returned by repositories when the primary key already exists.
var ErrDuplicateID = errors.New("account id already exists")

type Repository interface {
	GetByID(ctx context.Context, id string) (*accountDatamodel.Account, error)
	ListActive(ctx context.Context) ([]*accountDatamodel.Account, error)
	Create(ctx context.Context, acc *accountDatamodel.Account) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error)
	ReceivedSince(ctx context.Context, since time.Time) (map[string]int, error)
	SentCountsForDay(ctx context.Context, day string) (map[string]int, error)
}

// DepartmentRegistry creates departments lazily when an account references one.
type DepartmentRegistry interface {
	EnsureDepartment(ctx context.Context, name string) error
}

type Service struct {
	repo        Repository
	departments DepartmentRegistry
	policy      internal.Policy
	bus         events.Publisher
	bcryptCost  int
	logger      *slog.Logger
}

func NewService(repo Repository, departments DepartmentRegistry, policy internal.Policy, bus events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		policy:      policy.WithDefaults(),
		bus:         bus,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get account", "error", err, "account_id", id)
		return nil, internal.NewInternalError("failed to get account", err)
	}
	if acc == nil {
		return nil, internal.ErrAccountNotFound
	}
	return FromDataModel(acc), nil
}

func (s *Service) ListActive(ctx context.Context) ([]*Account, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list active accounts", "error", err)
		return nil, internal.NewInternalError("failed to list accounts", err)
	}

	accounts := make([]*Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, FromDataModel(row))
	}
	return accounts, nil
}

// ListActiveWithStats adds today's send count and this month's received total to every active account.
func (s *Service) ListActiveWithStats(ctx context.Context) ([]*AccountWithStats, error) {
	accounts, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	received, err := s.repo.ReceivedSince(ctx, internal.StartOfMonth(now))
	if err != nil {
		s.logger.Error("failed to aggregate monthly received", "error", err)
		return nil, internal.NewInternalError("failed to compute account stats", err)
	}

	sent, err := s.repo.SentCountsForDay(ctx, dailylimit.Day(now))
	if err != nil {
		s.logger.Error("failed to load daily send counts", "error", err)
		return nil, internal.NewInternalError("failed to compute account stats", err)
	}

	result := make([]*AccountWithStats, 0, len(accounts))
	for _, acc := range accounts {
		result = append(result, &AccountWithStats{
			Account:         *acc,
			DailySentCount:  sent[acc.ID],
			MonthlyReceived: received[acc.ID],
		})
	}
	return result, nil
}

func (s *Service) CreateAccount(ctx context.Context, actor *auth.User, dto CreateAccountDTO) (*Account, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, dto.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check account", err)
	}
	if existing != nil {
		return nil, internal.ErrAccountExists
	}

	row := &accountDatamodel.Account{
		ID:           dto.ID,
		Email:        dto.Email,
		FirstName:    strings.TrimSpace(dto.FirstName),
		LastName:     strings.TrimSpace(dto.LastName),
		Department:   strings.TrimSpace(dto.Department),
		Role:         dto.Role,
		PointBalance: s.policy.BaselineBalance,
		IsActive:     true,
	}
	if row.Department == "" {
		row.Department = internal.UnassignedDepartment
	}
	if row.Role == "" {
		row.Role = auth.RoleUser
	}
	if dto.PointBalance != nil {
		row.PointBalance = *dto.PointBalance
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}
	if dto.Password != "" {
		hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		row.PasswordHash = &hash
	}

	if err := s.departments.EnsureDepartment(ctx, row.Department); err != nil {
		return nil, internal.NewInternalError("failed to ensure department", err)
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateID) {
			return nil, internal.ErrAccountExists
		}
		s.logger.Error("failed to create account", "error", err, "account_id", dto.ID)
		return nil, internal.NewInternalError("failed to create account", err)
	}

	s.logger.Info("account created", "account_id", row.ID, "role", row.Role, "department", row.Department, "actor_id", actor.ID)
	return FromDataModel(row), nil
}

func (s *Service) UpdateAccount(ctx context.Context, actor *auth.User, id string, dto UpdateAccountDTO) (*Account, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if dto.Email != nil {
		fields["email"] = *dto.Email
	}
	if dto.Department != nil {
		dept := strings.TrimSpace(*dto.Department)
		if err := s.departments.EnsureDepartment(ctx, dept); err != nil {
			return nil, internal.NewInternalError("failed to ensure department", err)
		}
		fields["department"] = dept
	}
	if dto.IsActive != nil {
		fields["is_active"] = *dto.IsActive
	}

	return s.update(ctx, id, fields)
}

// SetBalance is the admin correction path; it refuses negative balances.
func (s *Service) SetBalance(ctx context.Context, actor *auth.User, id string, balance int) (*Account, error) {
	if err := auth.EnsureAdmin(actor); err != nil {
		return nil, err
	}
	if balance < 0 {
		return nil, internal.NewValidationError("balance cannot be negative", internal.ErrCodeInvalidBalance)
	}

	acc, err := s.update(ctx, id, map[string]interface{}{"point_balance": balance})
	if err != nil {
		return nil, err
	}
	s.logger.Info("balance set", "account_id", id, "balance", balance, "actor_id", actor.ID)
	return acc, nil
}

// SetBalanceDirect overwrites a balance with any integer and writes no ledger entry.
func (s *Service) SetBalanceDirect(ctx context.Context, actor *auth.User, id string, balance int) (*Account, error) {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return nil, err
	}

	acc, err := s.update(ctx, id, map[string]interface{}{"point_balance": balance})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("balance overridden", "account_id", id, "balance", balance, "actor_id", actor.ID)
	s.publish(ctx, events.NewBalanceOverriddenEvent(id, balance, actor.ID))
	return acc, nil
}

func (s *Service) RenameAccount(ctx context.Context, actor *auth.User, id string, dto RenameAccountDTO) (*Account, error) {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	return s.update(ctx, id, map[string]interface{}{
		"first_name": strings.TrimSpace(dto.FirstName),
		"last_name":  strings.TrimSpace(dto.LastName),
	})
}

func (s *Service) SetRole(ctx context.Context, actor *auth.User, id string, dto SetRoleDTO) (*Account, error) {
	if err := auth.EnsureSuperAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	acc, err := s.update(ctx, id, map[string]interface{}{"role": dto.Role})
	if err != nil {
		return nil, err
	}
	s.logger.Info("role changed", "account_id", id, "role", dto.Role, "actor_id", actor.ID)
	return acc, nil
}

func (s *Service) update(ctx context.Context, id string, fields map[string]interface{}) (*Account, error) {
	if len(fields) > 0 {
		fields["updated_at"] = time.Now()
		found, err := s.repo.Update(ctx, id, fields)
		if err != nil {
			s.logger.Error("failed to update account", "error", err, "account_id", id)
			return nil, internal.NewInternalError("failed to update account", err)
		}
		if !found {
			return nil, internal.ErrAccountNotFound
		}
	}
	return s.GetAccount(ctx, id)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
