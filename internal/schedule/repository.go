package schedule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrDayNotFound  = errors.New("day schedule not found")
	ErrSlotNotFound = errors.New("time slot not found")
	ErrSlotInactive = errors.New("time slot is inactive")
	ErrSlotFull     = errors.New("time slot is full")
	ErrSlotEmpty    = errors.New("time slot has no reservations to release")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Bootstrap inserts the seven weekday rows if they do not exist yet.
// Safe to call on every startup.
func (r *repository) Bootstrap(ctx context.Context) error {
	query := `
		INSERT INTO day_schedules (weekday, is_closed, uses_flexible_schedule, open_time, close_time)
		VALUES ($1, $2, false, '06:00', '22:00')
		ON CONFLICT (weekday) DO NOTHING
	`

	for _, day := range WeekOrder {
		closed := day == Sunday
		if _, err := r.db.ExecContext(ctx, query, day, closed); err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) GetAllDays(ctx context.Context) ([]DaySchedule, error) {
	query := `
		SELECT id, weekday, is_closed, uses_flexible_schedule, open_time, close_time, created_at, updated_at
		FROM day_schedules
	`

	var days []DaySchedule
	if err := r.db.SelectContext(ctx, &days, query); err != nil {
		return nil, err
	}

	return days, nil
}

func (r *repository) GetDayByWeekday(ctx context.Context, day Weekday) (*DaySchedule, error) {
	query := `
		SELECT id, weekday, is_closed, uses_flexible_schedule, open_time, close_time, created_at, updated_at
		FROM day_schedules
		WHERE weekday = $1
	`

	var ds DaySchedule
	err := r.db.GetContext(ctx, &ds, query, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	return &ds, nil
}

func (r *repository) ToggleClosed(ctx context.Context, day Weekday) (*DaySchedule, error) {
	query := `
		UPDATE day_schedules
		SET is_closed = NOT is_closed, updated_at = NOW()
		WHERE weekday = $1
		RETURNING id, weekday, is_closed, uses_flexible_schedule, open_time, close_time, created_at, updated_at
	`

	var ds DaySchedule
	err := r.db.GetContext(ctx, &ds, query, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	return &ds, nil
}

func (r *repository) EnableFlexible(ctx context.Context, day Weekday) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE day_schedules
		SET uses_flexible_schedule = true, updated_at = NOW()
		WHERE weekday = $1
	`, day)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDayNotFound
	}

	return nil
}

func (r *repository) CreateTimeSlot(ctx context.Context, dayScheduleID int, openTime, closeTime string, capacity int, label string, displayOrder int) (*TimeSlot, error) {
	query := `
		INSERT INTO time_slots (day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active)
		VALUES ($1, $2, $3, $4, 0, $5, $6, true)
		RETURNING id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, dayScheduleID, openTime, closeTime, capacity, label, displayOrder)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetSlotsByDay(ctx context.Context, dayScheduleID int, activeOnly bool) ([]TimeSlot, error) {
	query := `
		SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
		FROM time_slots
		WHERE day_schedule_id = $1
	`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY display_order, id`

	var slots []TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, dayScheduleID); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) GetSlotByID(ctx context.Context, id int) (*TimeSlot, error) {
	query := `
		SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
		FROM time_slots
		WHERE id = $1
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetSlotsByIDs(ctx context.Context, ids []int) ([]TimeSlot, error) {
	if len(ids) == 0 {
		return []TimeSlot{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
		FROM time_slots
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, err
	}

	var slots []TimeSlot
	if err := r.db.SelectContext(ctx, &slots, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) UpdateSlot(ctx context.Context, slot *TimeSlot) error {
	// The WHERE guard re-checks the capacity invariant at the database,
	// so a stale in-memory slot cannot shrink capacity below the
	// currently booked count.
	result, err := r.db.ExecContext(ctx, `
		UPDATE time_slots
		SET open_time = $1, close_time = $2, capacity = $3, label = $4, display_order = $5
		WHERE id = $6 AND current_reservations <= $3
	`, slot.OpenTime, slot.CloseTime, slot.Capacity, slot.Label, slot.DisplayOrder, slot.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCapacityBelowReservations
	}

	return nil
}

func (r *repository) DeactivateSlot(ctx context.Context, dayScheduleID, slotID int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE time_slots
		SET is_active = false
		WHERE id = $1 AND day_schedule_id = $2 AND is_active = true
	`, slotID, dayScheduleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSlotNotFound
	}

	return nil
}

func (r *repository) ShiftDisplayOrder(ctx context.Context, dayScheduleID, afterOrder int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE time_slots
		SET display_order = display_order + 1
		WHERE day_schedule_id = $1 AND display_order > $2
	`, dayScheduleID, afterOrder)
	return err
}

// ReserveSlot increments the reservation counter under a row lock so
// concurrent requests cannot overbook a slot.
func (r *repository) ReserveSlot(ctx context.Context, slotID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var slot TimeSlot
	err = tx.QueryRowxContext(ctx, `
		SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
		FROM time_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID).StructScan(&slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return err
	}

	if !slot.IsActive {
		return ErrSlotInactive
	}
	if slot.CurrentReservations >= slot.Capacity {
		return ErrSlotFull
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE time_slots
		SET current_reservations = current_reservations + 1
		WHERE id = $1
	`, slotID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ReleaseSlot decrements the reservation counter under the same row lock.
// Releasing an inactive slot is allowed: memberships may still hold
// references to soft-deleted slots.
func (r *repository) ReleaseSlot(ctx context.Context, slotID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var slot TimeSlot
	err = tx.QueryRowxContext(ctx, `
		SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
		FROM time_slots
		WHERE id = $1
		FOR UPDATE
	`, slotID).StructScan(&slot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotNotFound
		}
		return err
	}

	if slot.CurrentReservations <= 0 {
		return ErrSlotEmpty
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE time_slots
		SET current_reservations = current_reservations - 1
		WHERE id = $1
	`, slotID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
