package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
)

func TestCalculateEndDateRoundTrip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		durationType plan.DurationType
		wantDays     int
	}{
		{plan.Daily, 1},
		{plan.Weekly, 7},
		{plan.Monthly, 30},
		{plan.Quarterly, 90},
		{plan.Biannual, 180},
		{plan.Annual, 365},
	}

	for _, tt := range tests {
		t.Run(string(tt.durationType), func(t *testing.T) {
			days, err := tt.durationType.DayCount()
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, days)

			end := CalculateEndDate(start, days)
			assert.Equal(t, tt.wantDays, int(end.Sub(start).Hours()/24))
		})
	}
}

func TestWeeklyMembershipDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	days, err := plan.Weekly.DayCount()
	require.NoError(t, err)

	m := Membership{
		DurationType:  plan.Weekly,
		Status:        StatusPending,
		StartDate:     start,
		EndDate:       CalculateEndDate(start, days),
		TotalDays:     days,
		RemainingDays: days,
	}

	assert.Equal(t, 7, m.TotalDays)
	assert.Equal(t, 7, m.RemainingDays)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), m.EndDate)
}

func TestDeductOneDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	m := Membership{
		Status:        StatusActive,
		TotalDays:     7,
		RemainingDays: 3,
	}

	deducted := m.DeductOneDay(now)
	assert.True(t, deducted)
	assert.Equal(t, 2, m.RemainingDays)
	assert.Equal(t, StatusActive, m.Status)
	require.NotNil(t, m.LastDeductedOn)
}

func TestDeductOneDaySameDayIsNoOp(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	m := Membership{
		Status:        StatusActive,
		TotalDays:     7,
		RemainingDays: 3,
	}

	assert.True(t, m.DeductOneDay(now))
	// Retry later the same calendar day.
	assert.False(t, m.DeductOneDay(now.Add(6*time.Hour)))
	assert.Equal(t, 2, m.RemainingDays)

	// The next calendar day deducts again.
	assert.True(t, m.DeductOneDay(now.AddDate(0, 0, 1)))
	assert.Equal(t, 1, m.RemainingDays)
}

func TestDeductOneDayReachingZeroExpires(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	m := Membership{
		Status:        StatusActive,
		TotalDays:     7,
		RemainingDays: 1,
		EndDate:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, m.DeductOneDay(now))
	assert.Equal(t, 0, m.RemainingDays)
	assert.Equal(t, StatusExpired, m.Status)
	assert.Equal(t, now, m.EndDate)

	// Zero balance: further calls are no-ops, never negative.
	assert.False(t, m.DeductOneDay(now.AddDate(0, 0, 1)))
	assert.Equal(t, 0, m.RemainingDays)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusExpired, false},
		{StatusActive, StatusSuspended, true},
		{StatusActive, StatusExpired, true},
		{StatusActive, StatusCancelled, true},
		{StatusSuspended, StatusActive, true},
		{StatusSuspended, StatusExpired, false},
		{StatusExpired, StatusActive, false},
		{StatusCancelled, StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestThresholdsContains(t *testing.T) {
	th := Thresholds{7, 3, 1}

	assert.True(t, th.Contains(7))
	assert.True(t, th.Contains(1))
	assert.False(t, th.Contains(5))
	assert.False(t, th.Contains(0))
}

func TestReservedScheduleTotalSlots(t *testing.T) {
	rs := ReservedSchedule{
		"monday":    {1, 2},
		"wednesday": {3},
	}

	assert.Equal(t, 3, rs.TotalSlots())
	assert.Equal(t, 0, ReservedSchedule{}.TotalSlots())
}
