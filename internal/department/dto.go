package department

import (
	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
)

type DistributeDTO struct {
	TotalPoints *int   `json:"total_points"`
	Reason      string `json:"reason,omitempty"`
}

// Validate is used by the quarterly route, which only accepts positive totals.
func (d DistributeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("total_points", d.TotalPoints).Required().MinInt(1, internal.ErrCodeInvalidAmount)
	v.Field("reason", d.Reason).MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateSigned is used by the team route, where a negative total is a bulk deduction.
func (d DistributeDTO) ValidateSigned() error {
	v := validation.NewValidator()
	v.Field("total_points", d.TotalPoints).Required().NonZero(internal.ErrCodeInvalidAmount)
	v.Field("reason", d.Reason).MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AdjustDepartmentDTO struct {
	AdjustmentAmount *int   `json:"adjustment_amount"`
	Reason           string `json:"reason,omitempty"`
}

func (d AdjustDepartmentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("adjustment_amount", d.AdjustmentAmount).Required()
	v.Field("reason", d.Reason).MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []string `json:"departments"`
}

type RankingsResponse struct {
	Rankings []Ranking `json:"rankings"`
}

type AdjustmentsResponse struct {
	Adjustments []*Adjustment `json:"adjustments"`
}
