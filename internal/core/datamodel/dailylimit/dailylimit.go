package dailylimit

// DailyLimit counts organic sends per account per local calendar day.
type DailyLimit struct {
	ID        int64  `gorm:"primaryKey"`
	AccountID string `gorm:"column:account_id;not null;uniqueIndex:idx_daily_limits_account_date"`
	Date      string `gorm:"column:date;type:date;not null;uniqueIndex:idx_daily_limits_account_date"`
	SendCount int    `gorm:"column:send_count;not null"`
}

func (DailyLimit) TableName() string {
	return "daily_limits"
}
