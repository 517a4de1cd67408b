package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTimeframe_Filter(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		timeframe Timeframe
		start     time.Time
		end       time.Time
	}

	tests := []testCase{
		{
			name:      "this month",
			timeframe: TimeframeThisMonth,
			start:     date(2024, time.March, 1),
			end:       date(2024, time.April, 1).Add(-time.Nanosecond),
		},
		{
			name:      "last month",
			timeframe: TimeframeLastMonth,
			start:     date(2024, time.February, 1),
			end:       date(2024, time.March, 1).Add(-time.Nanosecond),
		},
		{
			name:      "last three months",
			timeframe: TimeframeLastThreeMonths,
			start:     date(2024, time.January, 1),
			end:       date(2024, time.April, 1).Add(-time.Nanosecond),
		},
		{
			name:      "this year",
			timeframe: TimeframeThisYear,
			start:     date(2024, time.January, 1),
			end:       date(2024, time.April, 1).Add(-time.Nanosecond),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.timeframe.Filter(now)

			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.Equal(t, tc.start, *f.StartDate)
			assert.Equal(t, tc.end, *f.EndDate)
		})
	}

	t.Run("all time", func(t *testing.T) {
		f := TimeframeAll.Filter(now)
		assert.Nil(t, f.StartDate)
		assert.Nil(t, f.EndDate)
	})
}

func TestCustomFilter(t *testing.T) {
	f, err := customFilter(" 2024-01-10", "2024-01-20 ")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 10), *f.StartDate)
	assert.Equal(t, date(2024, time.January, 21).Add(-time.Nanosecond), *f.EndDate)

	f, err = customFilter("2024-01-10", "2024-01-10")
	require.NoError(t, err)
	assert.True(t, f.EndDate.After(*f.StartDate))

	_, err = customFilter("2024-01-20", "2024-01-10")
	assert.EqualError(t, err, "end date is before start date")

	_, err = customFilter("10/01/2024", "2024-01-10")
	assert.Error(t, err)
}
