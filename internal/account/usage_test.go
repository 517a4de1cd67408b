package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsUsageReset(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{name: "never stamped", last: nil, want: true},
		{name: "same month", last: new(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), want: false},
		{name: "previous month", last: new(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)), want: true},
		{name: "same month last year", last: new(time.Date(2023, 3, 15, 10, 0, 0, 0, time.UTC)), want: true},
		{name: "future month", last: new(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsUsageReset(tt.last, now))
		})
	}
}

func TestNeedsUsageReset_ComparesInUTC(t *testing.T) {
	tz := time.FixedZone("UTC+5", 5*60*60)
	// 2024-04-01 02:00 local is still March in UTC.
	last := time.Date(2024, 4, 1, 2, 0, 0, 0, tz)
	now := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)

	assert.False(t, NeedsUsageReset(&last, now))
}

func TestNewUsage(t *testing.T) {
	assert.Equal(t, Usage{Used: 3, Limit: 10, Remaining: 7}, NewUsage(3, 10))
	assert.Equal(t, Usage{Used: 10, Limit: 10, Remaining: 0}, NewUsage(10, 10))
	assert.Equal(t, Usage{Used: 12, Limit: 10, Remaining: 0}, NewUsage(12, 10))
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestAccount_PremiumExpired(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.False(t, (&Account{}).PremiumExpired(now))
	assert.False(t, (&Account{IsPremium: true}).PremiumExpired(now))
	assert.False(t, (&Account{IsPremium: true, PremiumEndDate: new(now.Add(time.Hour))}).PremiumExpired(now))
	assert.False(t, (&Account{IsPremium: true, PremiumEndDate: &now}).PremiumExpired(now))
	assert.True(t, (&Account{IsPremium: true, PremiumEndDate: new(now.Add(-time.Second))}).PremiumExpired(now))
}

func TestNewActivation(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	act := NewActivation(now, "order_1", "pay_1")

	assert.Equal(t, now, act.Start)
	assert.Equal(t, now.AddDate(0, 0, 30), act.End)
	assert.Equal(t, "order_1", act.OrderID)
	assert.Equal(t, "pay_1", act.PaymentID)
}
