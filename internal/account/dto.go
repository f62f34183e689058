package account

import (
	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/frahmantamala/kudos-points/internal/core/common/validation"
)

type CreateAccountDTO struct {
	ID           string  `json:"id"`
	Email        *string `json:"email,omitempty"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Department   string  `json:"department,omitempty"`
	Role         string  `json:"role,omitempty"`
	PointBalance *int    `json:"point_balance,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	Password     string  `json:"password,omitempty"`
}

func (d CreateAccountDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("id", d.ID).Required().MaxLength(100)
	v.Field("first_name", d.FirstName).MaxLength(100)
	v.Field("last_name", d.LastName).MaxLength(100)
	v.Field("department", d.Department).MaxLength(100)
	v.Field("role", d.Role).OneOf(internal.ErrCodeInvalidRole, auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin)
	v.Field("point_balance", d.PointBalance).MinInt(0, internal.ErrCodeInvalidBalance)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateAccountDTO is a partial update; nil fields are left alone.
type UpdateAccountDTO struct {
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (d UpdateAccountDTO) Validate() error {
	v := validation.NewValidator()
	if d.Department != nil {
		v.Field("department", d.Department).Required().MaxLength(100)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d UpdateAccountDTO) Empty() bool {
	return d.Email == nil && d.Department == nil && d.IsActive == nil
}

type SetBalanceDTO struct {
	Balance *int `json:"balance"`
}

func (d SetBalanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("balance", d.Balance).Required().MinInt(0, internal.ErrCodeInvalidBalance)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// SetBalanceDirectDTO accepts any integer balance, including negative ones.
type SetBalanceDirectDTO struct {
	UserID  string `json:"user_id"`
	Balance *int   `json:"balance"`
}

func (d SetBalanceDirectDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("user_id", d.UserID).Required()
	v.Field("balance", d.Balance).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RenameAccountDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (d RenameAccountDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("first_name", d.FirstName).Required().MaxLength(100)
	v.Field("last_name", d.LastName).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type SetRoleDTO struct {
	Role string `json:"role"`
}

func (d SetRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().OneOf(internal.ErrCodeInvalidRole, auth.RoleUser, auth.RoleAdmin, auth.RoleSuperAdmin)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AccountsResponse struct {
	Accounts []*AccountWithStats `json:"accounts"`
}
