package transaction_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptx "github.com/MrJamesThe3rd/pfm/internal/http/transaction"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

func TestParseFilter_Dates(t *testing.T) {
	type testCase struct {
		name      string
		query     url.Values
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}

	tests := []testCase{
		{
			name:      "CalendarDates",
			query:     url.Values{"start_date": {"2024-03-01"}, "end_date": {"2024-03-31"}},
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "Timestamps",
			query:     url.Values{"start_date": {"2024-03-01T08:00:00Z"}, "end_date": {"2024-03-31T12:30:00+02:00"}},
			wantStart: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 31, 10, 30, 0, 0, time.UTC),
		},
		{
			name:      "TimestampStartCalendarEnd",
			query:     url.Values{"start_date": {"2024-03-01T08:00:00Z"}, "end_date": {"2024-03-01"}},
			wantStart: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:    "BadEndDate",
			query:   url.Values{"end_date": {"31/03/2024"}},
			wantErr: true,
		},
		{
			name:    "EndBeforeStart",
			query:   url.Values{"start_date": {"2024-03-10"}, "end_date": {"2024-03-01T00:00:00Z"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := httptx.ParseFilter(tt.query)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.StartDate)
			require.NotNil(t, got.EndDate)
			assert.True(t, tt.wantStart.Equal(*got.StartDate), "start %s", got.StartDate)
			assert.True(t, tt.wantEnd.Equal(*got.EndDate), "end %s", got.EndDate)
		})
	}
}

func TestParseFilter_TypeAndCategory(t *testing.T) {
	got, err := httptx.ParseFilter(url.Values{"type": {"income"}, "category": {"salary"}})
	require.NoError(t, err)
	require.NotNil(t, got.Type)
	assert.Equal(t, transaction.TypeIncome, *got.Type)
	assert.Equal(t, "salary", *got.Category)

	_, err = httptx.ParseFilter(url.Values{"type": {"gift"}})
	assert.Error(t, err)
}
