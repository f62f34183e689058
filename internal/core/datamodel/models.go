// Package datamodel holds the gorm row types shared by every repository.
package datamodel

import (
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	dailylimitDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/dailylimit"
	departmentDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/department"
	systemconfigDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/systemconfig"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
)

// Models is every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&accountDatamodel.Account{},
		&transferDatamodel.Transfer{},
		&dailylimitDatamodel.DailyLimit{},
		&departmentDatamodel.Department{},
		&departmentDatamodel.Adjustment{},
		&systemconfigDatamodel.SystemConfig{},
	}
}
