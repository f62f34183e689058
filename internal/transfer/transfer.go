package transfer

import (
	"time"

	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
)

// Party is the directory view of an account as it is now, not as it was at transfer time.
type Party struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
}

type Transfer struct {
	ID         int64     `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Points     int       `json:"points"`
	Message    *string   `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type TransferWithAccounts struct {
	Transfer
	Sender   *Party `json:"sender"`
	Receiver *Party `json:"receiver"`
}

func partyFromDataModel(a *accountDatamodel.Account) *Party {
	if a == nil {
		return nil
	}
	return &Party{
		ID:         a.ID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Department: a.Department,
	}
}

func FromDataModel(t *transferDatamodel.Transfer) *TransferWithAccounts {
	if t == nil {
		return nil
	}
	return &TransferWithAccounts{
		Transfer: Transfer{
			ID:         t.ID,
			SenderID:   t.SenderID,
			ReceiverID: t.ReceiverID,
			Points:     t.Points,
			Message:    t.Message,
			CreatedAt:  t.CreatedAt,
		},
		Sender:   partyFromDataModel(t.Sender),
		Receiver: partyFromDataModel(t.Receiver),
	}
}

func FromDataModels(rows []*transferDatamodel.Transfer) []*TransferWithAccounts {
	result := make([]*TransferWithAccounts, 0, len(rows))
	for _, row := range rows {
		result = append(result, FromDataModel(row))
	}
	return result
}
