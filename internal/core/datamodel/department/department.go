package department

import "time"

type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Department) TableName() string {
	return "departments"
}

// Adjustment is an audit record; it never changes balances.
type Adjustment struct {
	ID               int64     `gorm:"primaryKey"`
	Department       string    `gorm:"column:department;index;not null"`
	AdjustmentAmount int       `gorm:"column:adjustment_amount;not null"`
	Reason           string    `gorm:"column:reason"`
	AdjustedBy       string    `gorm:"column:adjusted_by;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Adjustment) TableName() string {
	return "department_adjustments"
}
