package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

func TestDurationTypeDayCount(t *testing.T) {
	tests := []struct {
		dt   DurationType
		want int
	}{
		{Daily, 1},
		{Weekly, 7},
		{Monthly, 30},
		{Quarterly, 90},
		{Biannual, 180},
		{Annual, 365},
	}

	for _, tt := range tests {
		got, err := tt.dt.DayCount()
		require.NoError(t, err, tt.dt)
		assert.Equal(t, tt.want, got, tt.dt)
	}

	_, err := DurationType("fortnightly").DayCount()
	assert.Error(t, err)
}

func TestDurationTypeValid(t *testing.T) {
	assert.True(t, Weekly.Valid())
	assert.True(t, Annual.Valid())
	assert.False(t, DurationType("").Valid())
	assert.False(t, DurationType("WEEKLY").Valid())
}

func TestPolicyAllowsDay(t *testing.T) {
	p := Policy{AllowedDays: []schedule.Weekday{schedule.Monday, schedule.Friday}}

	assert.True(t, p.AllowsDay(schedule.Monday))
	assert.True(t, p.AllowsDay(schedule.Friday))
	assert.False(t, p.AllowsDay(schedule.Sunday))

	// An empty list means no day is allowed, not every day.
	assert.False(t, Policy{}.AllowsDay(schedule.Monday))
}
