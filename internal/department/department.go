package department

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/department"
)

// Ranking is one department's standing by summed member balance.
type Ranking struct {
	Department  string `json:"department" db:"department"`
	TotalPoints int64  `json:"total_points" db:"total_points"`
	MemberCount int64  `json:"member_count" db:"member_count"`
}

type Share struct {
	AccountID string `json:"account_id"`
	Points    int    `json:"points"`
}

type DistributionResult struct {
	Department  string  `json:"department"`
	TotalPoints int     `json:"total_points"`
	Reason      string  `json:"reason"`
	Recipients  int     `json:"recipients"`
	Shares      []Share `json:"shares"`
}

type Adjustment struct {
	ID               int64     `json:"id"`
	Department       string    `json:"department"`
	AdjustmentAmount int       `json:"adjustment_amount"`
	Reason           string    `json:"reason"`
	AdjustedBy       string    `json:"adjusted_by"`
	CreatedAt        time.Time `json:"created_at"`
}

func AdjustmentFromDataModel(a *departmentDatamodel.Adjustment) *Adjustment {
	if a == nil {
		return nil
	}
	return &Adjustment{
		ID:               a.ID,
		Department:       a.Department,
		AdjustmentAmount: a.AdjustmentAmount,
		Reason:           a.Reason,
		AdjustedBy:       a.AdjustedBy,
		CreatedAt:        a.CreatedAt,
	}
}

// SplitEvenly divides total across accountIDs in the given order. Division truncates toward
// zero, so the remainder carries the sign of total; the first |remainder| accounts get one
// extra point in that direction. The shares always sum to total.
func SplitEvenly(accountIDs []string, total int) []Share {
	n := len(accountIDs)
	if n == 0 {
		return nil
	}

	base := total / n
	remainder := total % n
	step := 1
	if remainder < 0 {
		step = -1
		remainder = -remainder
	}

	shares := make([]Share, n)
	for i, id := range accountIDs {
		points := base
		if i < remainder {
			points += step
		}
		shares[i] = Share{AccountID: id, Points: points}
	}
	return shares
}
