package circulation

import (
	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
)

type SetCirculationDTO struct {
	Amount *int `json:"amount"`
}

func (d SetCirculationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", d.Amount).Required().MinInt(0, internal.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
