package internal

import (
	"errors"
	"fmt"
)

const (
	DefaultDailySendCap    = 3
	DefaultMinPoints       = 1
	DefaultMaxPoints       = 3
	DefaultBaselineBalance = 20

	// UnassignedDepartment is stored for accounts created without a department.
	UnassignedDepartment = "未設定"
	// PrivilegedDepartment groups superadmin accounts and is excluded from rankings.
	PrivilegedDepartment = "SuperAdmin"

	DefaultDistributionReason = "チーム分配"

	CirculationTargetKey = "total_circulation_target"
)

// Policy holds the tunable ledger rules.
type Policy struct {
	DailySendCap    int `mapstructure:"daily_send_cap"`
	MinPoints       int `mapstructure:"min_points"`
	MaxPoints       int `mapstructure:"max_points"`
	BaselineBalance int `mapstructure:"baseline_balance"`
}

func DefaultPolicy() Policy {
	return Policy{
		DailySendCap:    DefaultDailySendCap,
		MinPoints:       DefaultMinPoints,
		MaxPoints:       DefaultMaxPoints,
		BaselineBalance: DefaultBaselineBalance,
	}
}

// WithDefaults fills zero fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.DailySendCap == 0 {
		p.DailySendCap = d.DailySendCap
	}
	if p.MinPoints == 0 {
		p.MinPoints = d.MinPoints
	}
	if p.MaxPoints == 0 {
		p.MaxPoints = d.MaxPoints
	}
	if p.BaselineBalance == 0 {
		p.BaselineBalance = d.BaselineBalance
	}
	return p
}

func (p Policy) Validate() error {
	if p.DailySendCap < 1 {
		return errors.New("daily_send_cap must be at least 1")
	}
	if p.MinPoints < 1 {
		return errors.New("min_points must be at least 1")
	}
	if p.MaxPoints < p.MinPoints {
		return fmt.Errorf("max_points %d is below min_points %d", p.MaxPoints, p.MinPoints)
	}
	if p.BaselineBalance < 0 {
		return errors.New("baseline_balance cannot be negative")
	}
	return nil
}
