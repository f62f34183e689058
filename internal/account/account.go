package account

import (
	"strings"
	"time"

	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
)

type Account struct {
	ID           string    `json:"id"`
	Email        *string   `json:"email,omitempty"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Department   string    `json:"department"`
	Role         string    `json:"role"`
	PointBalance int       `json:"point_balance"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountWithStats adds point-in-time activity figures to an account.
type AccountWithStats struct {
	Account
	DailySentCount  int `json:"daily_sent_count"`
	MonthlyReceived int `json:"monthly_received"`
}

func (a *Account) DisplayName() string {
	return strings.TrimSpace(a.LastName + " " + a.FirstName)
}

func ToDataModel(a *Account) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:           a.ID,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Department:   a.Department,
		Role:         a.Role,
		PointBalance: a.PointBalance,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(a *accountDatamodel.Account) *Account {
	if a == nil {
		return nil
	}
	return &Account{
		ID:           a.ID,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Department:   a.Department,
		Role:         a.Role,
		PointBalance: a.PointBalance,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
