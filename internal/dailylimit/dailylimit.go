package dailylimit

import (
	"context"
	"time"
)

const dayLayout = "2006-01-02"

// Counter tracks how many organic transfers an account sent on a given day.
// It only counts; the cap is interpreted by the caller.
type Counter interface {
	Count(ctx context.Context, accountID, day string) (int, error)
	CanSend(ctx context.Context, accountID, day string, dailyCap int) (bool, error)
	RecordSend(ctx context.Context, accountID, day string) error
}

// Day is the server-local calendar day of t.
func Day(t time.Time) string {
	return t.In(time.Local).Format(dayLayout)
}

// Today is Day(time.Now()).
func Today() string {
	return Day(time.Now())
}

// Below reports whether count still leaves room under dailyCap.
func Below(count, dailyCap int) bool {
	return count < dailyCap
}
