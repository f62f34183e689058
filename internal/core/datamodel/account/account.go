package account

import "time"

// Account has no gorm defaults on balance or active flag: gorm skips zero
// values on insert, which would let a column default replace an explicit 0/false.
type Account struct {
	ID           string    `gorm:"primaryKey;column:id"`
	Email        *string   `gorm:"column:email"`
	FirstName    string    `gorm:"column:first_name"`
	LastName     string    `gorm:"column:last_name"`
	Department   string    `gorm:"column:department;index;not null"`
	Role         string    `gorm:"column:role;not null"`
	PointBalance int       `gorm:"column:point_balance;not null"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	PasswordHash *string   `gorm:"column:password_hash"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
