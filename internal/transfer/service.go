package transfer

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
	"github.com/frahmantamala/kudos-points/internal/core/events"
	"github.com/frahmantamala/kudos-points/internal/dailylimit"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*transferDatamodel.Transfer, error)
	List(ctx context.Context, limit, offset int) ([]*transferDatamodel.Transfer, error)
	ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]*transferDatamodel.Transfer, error)
	RunInTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of writes a send needs, all bound to one store transaction.
type LedgerTx interface {
	// LockAccounts reads the accounts for update in ascending id order. Missing ids are absent from the map.
	LockAccounts(ctx context.Context, ids ...string) (map[string]*accountDatamodel.Account, error)
	Insert(ctx context.Context, t *transferDatamodel.Transfer) error
	// Debit subtracts points only while the balance covers them and reports whether it did.
	Debit(ctx context.Context, id string, points int) (bool, error)
	Credit(ctx context.Context, id string, points int) error
	Counter() dailylimit.Counter
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

// Send moves points from the actor to a colleague. Checks run in a fixed order and the
// four writes commit together or not at all.
func (s *Service) Send(ctx context.Context, actor *auth.User, dto SendPointsDTO) (*TransferWithAccounts, error) {
	if actor == nil || actor.ID != dto.SenderID {
		return nil, internal.ErrSendOnBehalf
	}
	if dto.SenderID == dto.ReceiverID {
		return nil, internal.ErrSelfTransfer
	}
	if err := validation.ValidatePoints(dto.Points, s.policy.MinPoints, s.policy.MaxPoints); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	day := dailylimit.Today()
	record := &transferDatamodel.Transfer{
		SenderID:   dto.SenderID,
		ReceiverID: dto.ReceiverID,
		Points:     dto.Points,
		Message:    dto.Message,
	}

	err := s.repo.RunInTx(ctx, func(tx LedgerTx) error {
		parties, err := tx.LockAccounts(ctx, dto.SenderID, dto.ReceiverID)
		if err != nil {
			return err
		}
		sender := parties[dto.SenderID]
		if sender == nil {
			return internal.ErrAccountNotFound
		}
		if !sender.IsActive {
			return internal.ErrUserInactive
		}
		if sender.PointBalance < dto.Points {
			return internal.ErrInsufficientBalance
		}

		counter := tx.Counter()
		ok, err := counter.CanSend(ctx, dto.SenderID, day, s.policy.DailySendCap)
		if err != nil {
			return err
		}
		if !ok {
			return internal.ErrDailyCapReached
		}

		if parties[dto.ReceiverID] == nil {
			return internal.ErrReceiverNotFound
		}

		if err := tx.Insert(ctx, record); err != nil {
			return err
		}
		debited, err := tx.Debit(ctx, dto.SenderID, dto.Points)
		if err != nil {
			return err
		}
		if !debited {
			return internal.ErrInsufficientBalance
		}
		if err := tx.Credit(ctx, dto.ReceiverID, dto.Points); err != nil {
			return err
		}
		return counter.RecordSend(ctx, dto.SenderID, day)
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			s.logger.Info("send rejected", "sender_id", dto.SenderID, "receiver_id", dto.ReceiverID, "points", dto.Points, "reason", err.Error())
			return nil, err
		}
		s.logger.Error("send failed", "error", err, "sender_id", dto.SenderID, "receiver_id", dto.ReceiverID)
		return nil, internal.NewInternalError("failed to send points", err)
	}

	s.logger.Info("points sent", "transfer_id", record.ID, "sender_id", dto.SenderID, "receiver_id", dto.ReceiverID, "points", dto.Points)
	s.publish(ctx, events.NewPointsTransferredEvent(record.ID, dto.SenderID, dto.ReceiverID, dto.Points))

	hydrated, err := s.repo.GetByID(ctx, record.ID)
	if err != nil || hydrated == nil {
		// the send is committed; fall back to the bare record
		return FromDataModel(record), nil
	}
	return FromDataModel(hydrated), nil
}

// History returns one page of the full ledger, newest first.
func (s *Service) History(ctx context.Context, limit, offset int) ([]*TransferWithAccounts, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list transfers", "error", err)
		return nil, internal.NewInternalError("failed to list transfers", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) Recent(ctx context.Context, n int) ([]*TransferWithAccounts, error) {
	return s.History(ctx, n, 0)
}

// ForAccount lists transfers sent or received by accountID. Users may only read their own.
func (s *Service) ForAccount(ctx context.Context, actor *auth.User, accountID string, limit, offset int) ([]*TransferWithAccounts, error) {
	if actor == nil || (actor.ID != accountID && !actor.IsAdmin()) {
		return nil, internal.NewForbiddenError("cannot read another account's history", internal.ErrCodeInsufficientRole)
	}

	limit, offset = clampPage(limit, offset)
	rows, err := s.repo.ListForAccount(ctx, accountID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list account transfers", "error", err, "account_id", accountID)
		return nil, internal.NewInternalError("failed to list transfers", err)
	}
	return FromDataModels(rows), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
