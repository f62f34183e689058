package transfer

import (
	"time"

	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
)

type Transfer struct {
	ID         int64                     `gorm:"primaryKey"`
	SenderID   string                    `gorm:"column:sender_id;index;not null"`
	ReceiverID string                    `gorm:"column:receiver_id;index;not null"`
	Points     int                       `gorm:"column:points;not null"`
	Message    *string                   `gorm:"column:message"`
	CreatedAt  time.Time                 `gorm:"column:created_at;index;autoCreateTime"`
	Sender     *accountDatamodel.Account `gorm:"foreignKey:SenderID;references:ID"`
	Receiver   *accountDatamodel.Account `gorm:"foreignKey:ReceiverID;references:ID"`
}

func (Transfer) TableName() string {
	return "transfers"
}
