package plan

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

type DurationType string

const (
	Daily     DurationType = "daily"
	Weekly    DurationType = "weekly"
	Monthly   DurationType = "monthly"
	Quarterly DurationType = "quarterly"
	Biannual  DurationType = "biannual"
	Annual    DurationType = "annual"
)

var ErrUnknownDurationType = errors.New("unknown duration type")

// DayCount maps a duration type to the number of consumable days a
// membership of that type is granted.
func (d DurationType) DayCount() (int, error) {
	switch d {
	case Daily:
		return 1, nil
	case Weekly:
		return 7, nil
	case Monthly:
		return 30, nil
	case Quarterly:
		return 90, nil
	case Biannual:
		return 180, nil
	case Annual:
		return 365, nil
	default:
		return 0, ErrUnknownDurationType
	}
}

func (d DurationType) Valid() bool {
	_, err := d.DayCount()
	return err == nil
}

// Policy holds the scheduling constraints attached to a plan. When
// TimeRestrictions lists slot ids for a weekday, only those slots are
// selectable on that weekday.
type Policy struct {
	AllowedDays            []schedule.Weekday          `json:"allowed_days"`
	MaxSlotsPerDay         int                         `json:"max_slots_per_day"`
	MaxReservationsPerWeek int                         `json:"max_reservations_per_week"`
	TimeRestrictions       map[schedule.Weekday][]int  `json:"time_restrictions,omitempty"`
}

func (p Policy) AllowsDay(day schedule.Weekday) bool {
	for _, d := range p.AllowedDays {
		if d == day {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer so the policy is stored as JSONB.
func (p Policy) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *Policy) Scan(src interface{}) error {
	if src == nil {
		*p = Policy{}
		return nil
	}

	b, ok := src.([]byte)
	if !ok {
		return errors.New("unsupported type for policy scan")
	}
	return json.Unmarshal(b, p)
}

type Plan struct {
	ID           int          `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	DurationType DurationType `db:"duration_type" json:"duration_type"`
	PriceCents   int64        `db:"price_cents" json:"price_cents"`
	Currency     string       `db:"currency" json:"currency"`
	Policy       Policy       `db:"policy" json:"policy"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

type CreatePlanRequest struct {
	Name         string       `json:"name" binding:"required"`
	Description  string       `json:"description"`
	DurationType DurationType `json:"duration_type" binding:"required"`
	PriceCents   int64        `json:"price_cents" binding:"required,min=0"`
	Currency     string       `json:"currency"`
	Policy       Policy       `json:"policy"`
}

type UpdatePlanRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Policy      *Policy `json:"policy,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
