package membership

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the membership state machine. Expired and
// cancelled are terminal; suspended memberships can be reinstated.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusExpired, StatusSuspended, StatusCancelled},
	StatusSuspended: {StatusActive, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ReservedSchedule maps a weekday to the time slot ids a membership has
// reserved. Slot ids are weak references: a soft-deleted slot stays in
// the map and resolves as unavailable, never as an error.
type ReservedSchedule map[schedule.Weekday][]int

func (rs ReservedSchedule) Value() (driver.Value, error) {
	if rs == nil {
		return json.Marshal(ReservedSchedule{})
	}
	return json.Marshal(rs)
}

func (rs *ReservedSchedule) Scan(src interface{}) error {
	if src == nil {
		*rs = ReservedSchedule{}
		return nil
	}

	b, ok := src.([]byte)
	if !ok {
		return errors.New("unsupported type for reserved schedule scan")
	}
	return json.Unmarshal(b, rs)
}

// TotalSlots counts every reserved slot across the week.
func (rs ReservedSchedule) TotalSlots() int {
	total := 0
	for _, ids := range rs {
		total += len(ids)
	}
	return total
}

// Thresholds is the list of remaining-day marks at which expiry
// warnings are sent.
type Thresholds []int

func (t Thresholds) Value() (driver.Value, error) {
	if t == nil {
		return json.Marshal(Thresholds{})
	}
	return json.Marshal(t)
}

func (t *Thresholds) Scan(src interface{}) error {
	if src == nil {
		*t = Thresholds{}
		return nil
	}

	b, ok := src.([]byte)
	if !ok {
		return errors.New("unsupported type for thresholds scan")
	}
	return json.Unmarshal(b, t)
}

func (t Thresholds) Contains(days int) bool {
	for _, v := range t {
		if v == days {
			return true
		}
	}
	return false
}

// DefaultThresholds are applied when a membership is created without
// explicit notification thresholds.
var DefaultThresholds = Thresholds{7, 3, 1}

type Membership struct {
	ID                     int               `db:"id" json:"id"`
	UserID                 int               `db:"user_id" json:"user_id"`
	PlanID                 int               `db:"plan_id" json:"plan_id"`
	DurationType           plan.DurationType `db:"duration_type" json:"duration_type"`
	Status                 Status            `db:"status" json:"status"`
	PriceCents             int64             `db:"price_cents" json:"price_cents"`
	StartDate              time.Time         `db:"start_date" json:"start_date"`
	EndDate                time.Time         `db:"end_date" json:"end_date"`
	TotalDays              int               `db:"total_days" json:"total_days"`
	RemainingDays          int               `db:"remaining_days" json:"remaining_days"`
	LastDeductedOn         *time.Time        `db:"last_deducted_on" json:"last_deducted_on,omitempty"`
	AutoDeductDays         bool              `db:"auto_deduct_days" json:"auto_deduct_days"`
	ReservedSchedule       ReservedSchedule  `db:"reserved_schedule" json:"reserved_schedule"`
	NotificationThresholds Thresholds        `db:"notification_thresholds" json:"notification_thresholds"`
	CreatedAt              time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time         `db:"updated_at" json:"updated_at"`
}

// CalculateEndDate returns the start date plus the membership's total
// consumable days, in calendar days.
func CalculateEndDate(start time.Time, totalDays int) time.Time {
	return start.AddDate(0, 0, totalDays)
}

// sameDay compares two instants by calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DeductOneDay consumes one day of the membership as of "now". It is a
// no-op when the balance is already zero or when a day was already
// deducted on the same calendar day, which makes same-day retries safe.
// Reaching zero flips the membership to expired and pins the end date.
// Returns true when a day was actually deducted.
func (m *Membership) DeductOneDay(now time.Time) bool {
	if m.RemainingDays <= 0 {
		return false
	}
	if m.LastDeductedOn != nil && sameDay(*m.LastDeductedOn, now) {
		return false
	}

	m.RemainingDays--
	deductedOn := now
	m.LastDeductedOn = &deductedOn

	if m.RemainingDays == 0 {
		m.Status = StatusExpired
		m.EndDate = now
	}

	return true
}

type CreateMembershipRequest struct {
	PlanID            int              `json:"plan_id" binding:"required"`
	StartDate         string           `json:"start_date,omitempty"`
	RequestedSchedule ReservedSchedule `json:"requested_schedule,omitempty"`
	Thresholds        Thresholds       `json:"notification_thresholds,omitempty"`
}

type ReserveSlotsRequest struct {
	Schedule ReservedSchedule `json:"schedule" binding:"required"`
}
