package schedule

import (
	"fmt"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekOrder is the canonical Monday-first ordering used for iteration
// and for tie-breaking in capacity metrics.
var WeekOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (w Weekday) Valid() bool {
	for _, d := range WeekOrder {
		if d == w {
			return true
		}
	}
	return false
}

func WeekdayFromTime(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// DaySchedule is the per-weekday configuration. Exactly one row exists
// per weekday; rows are created at bootstrap and never deleted.
type DaySchedule struct {
	ID                   int       `db:"id" json:"id"`
	Weekday              Weekday   `db:"weekday" json:"weekday"`
	IsClosed             bool      `db:"is_closed" json:"is_closed"`
	UsesFlexibleSchedule bool      `db:"uses_flexible_schedule" json:"uses_flexible_schedule"`
	OpenTime             string    `db:"open_time" json:"open_time"`
	CloseTime            string    `db:"close_time" json:"close_time"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlot is a capacity-bounded window inside a flexible day.
// Slots are soft-deleted (is_active=false), never removed, so
// historical reservation references stay resolvable.
type TimeSlot struct {
	ID                  int       `db:"id" json:"id"`
	DayScheduleID       int       `db:"day_schedule_id" json:"day_schedule_id"`
	OpenTime            string    `db:"open_time" json:"open_time"`
	CloseTime           string    `db:"close_time" json:"close_time"`
	Capacity            int       `db:"capacity" json:"capacity"`
	CurrentReservations int       `db:"current_reservations" json:"current_reservations"`
	Label               string    `db:"label" json:"label"`
	DisplayOrder        int       `db:"display_order" json:"display_order"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

func (s *TimeSlot) Available() int {
	return s.Capacity - s.CurrentReservations
}

func (s *TimeSlot) IsFull() bool {
	return s.CurrentReservations >= s.Capacity
}

type DayWithSlots struct {
	DaySchedule
	Slots []TimeSlot `json:"slots"`
}

type DayMetrics struct {
	Weekday           Weekday `json:"weekday"`
	IsClosed          bool    `json:"is_closed"`
	TotalCapacity     int     `json:"total_capacity"`
	TotalReservations int     `json:"total_reservations"`
	AvailableSpaces   int     `json:"available_spaces"`
	OccupancyPercent  float64 `json:"occupancy_percent"`
}

type CapacityMetrics struct {
	Days              []DayMetrics `json:"days"`
	TotalCapacity     int          `json:"total_capacity"`
	TotalReservations int          `json:"total_reservations"`
	AvailableSpaces   int          `json:"available_spaces"`
	OccupancyPercent  float64      `json:"occupancy_percent"`
	BusiestDay        Weekday      `json:"busiest_day"`
}

type CreateTimeSlotRequest struct {
	OpenTime  string `json:"open_time" binding:"required"`
	CloseTime string `json:"close_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1,max=500"`
	Label     string `json:"label"`
}

// UpdateTimeSlotRequest carries a partial update; nil fields are untouched.
type UpdateTimeSlotRequest struct {
	OpenTime  *string `json:"open_time,omitempty"`
	CloseTime *string `json:"close_time,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
	Label     *string `json:"label,omitempty"`
}

// parseClock parses an "HH:MM" wall-clock string into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
