package transfer

import (
	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
)

type SendPointsDTO struct {
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Points     int     `json:"points"`
	Message    *string `json:"message,omitempty"`
}

// Validate covers the shape of the request; amount range and ownership are checked by Send in order.
func (d SendPointsDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("sender_id", d.SenderID).Required()
	v.Field("receiver_id", d.ReceiverID).Required()
	v.Field("message", d.Message).Custom(func(interface{}) *internal.AppError {
		return validation.ValidateMessage(d.Message)
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type TransfersResponse struct {
	Transfers []*TransferWithAccounts `json:"transfers"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}
