package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePointsTransferred  = "points.transferred"
	EventTypePointsDistributed  = "points.distributed"
	EventTypeBalancesReset      = "balances.reset"
	EventTypeBalanceOverridden  = "balance.overridden"
	EventTypeCirculationPinned  = "circulation.pinned"
	EventTypeDepartmentAdjusted = "department.adjusted"
)

// LedgerEventTypes lists every event the ledger emits.
var LedgerEventTypes = []string{
	EventTypePointsTransferred,
	EventTypePointsDistributed,
	EventTypeBalancesReset,
	EventTypeBalanceOverridden,
	EventTypeCirculationPinned,
	EventTypeDepartmentAdjusted,
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type PointsTransferredEvent struct {
	BaseEvent
	TransferID int64  `json:"transfer_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Points     int    `json:"points"`
}

func NewPointsTransferredEvent(transferID int64, senderID, receiverID string, points int) *PointsTransferredEvent {
	return &PointsTransferredEvent{
		BaseEvent: newBase(EventTypePointsTransferred, map[string]interface{}{
			"transfer_id": transferID,
			"sender_id":   senderID,
			"receiver_id": receiverID,
			"points":      points,
		}),
		TransferID: transferID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Points:     points,
	}
}

type PointsDistributedEvent struct {
	BaseEvent
	Department  string `json:"department"`
	TotalPoints int    `json:"total_points"`
	Recipients  int    `json:"recipients"`
	AdminID     string `json:"admin_id"`
}

func NewPointsDistributedEvent(department string, totalPoints, recipients int, adminID string) *PointsDistributedEvent {
	return &PointsDistributedEvent{
		BaseEvent: newBase(EventTypePointsDistributed, map[string]interface{}{
			"department":   department,
			"total_points": totalPoints,
			"recipients":   recipients,
			"admin_id":     adminID,
		}),
		Department:  department,
		TotalPoints: totalPoints,
		Recipients:  recipients,
		AdminID:     adminID,
	}
}

func NewBalancesResetEvent(accounts int64, baseline int, adminID string) BaseEvent {
	return newBase(EventTypeBalancesReset, map[string]interface{}{
		"accounts": accounts,
		"baseline": baseline,
		"admin_id": adminID,
	})
}

func NewBalanceOverriddenEvent(accountID string, balance int, adminID string) BaseEvent {
	return newBase(EventTypeBalanceOverridden, map[string]interface{}{
		"account_id": accountID,
		"balance":    balance,
		"admin_id":   adminID,
	})
}

func NewCirculationPinnedEvent(amount int, adminID string) BaseEvent {
	return newBase(EventTypeCirculationPinned, map[string]interface{}{
		"amount":   amount,
		"admin_id": adminID,
	})
}

func NewDepartmentAdjustedEvent(department string, amount int, adminID string) BaseEvent {
	return newBase(EventTypeDepartmentAdjusted, map[string]interface{}{
		"department": department,
		"amount":     amount,
		"admin_id":   adminID,
	})
}
