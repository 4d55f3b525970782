package membership

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidTransition  = errors.New("invalid membership status transition")
)

const membershipColumns = `
	id, user_id, plan_id, duration_type, status, price_cents, start_date, end_date,
	total_days, remaining_days, last_deducted_on, auto_deduct_days,
	reserved_schedule, notification_thresholds, created_at, updated_at
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Membership) (*Membership, error) {
	query := `
		INSERT INTO memberships (
			user_id, plan_id, duration_type, status, price_cents, start_date, end_date,
			total_days, remaining_days, auto_deduct_days, reserved_schedule, notification_thresholds
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + membershipColumns

	var created Membership
	err := r.db.GetContext(ctx, &created, query,
		m.UserID, m.PlanID, m.DurationType, m.Status, m.PriceCents, m.StartDate, m.EndDate,
		m.TotalDays, m.RemainingDays, m.AutoDeductDays, m.ReservedSchedule, m.NotificationThresholds,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetByUser(ctx context.Context, userID int) ([]Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE user_id = $1 ORDER BY created_at DESC`

	var memberships []Membership
	if err := r.db.SelectContext(ctx, &memberships, query, userID); err != nil {
		return nil, err
	}

	return memberships, nil
}

// UpdateStatus moves a membership between states. The WHERE clause pins
// the expected current state so two concurrent admin actions cannot
// both win.
func (r *repository) UpdateStatus(ctx context.Context, id int, from, to Status) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE memberships
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidTransition
	}

	return nil
}

func (r *repository) CommitReservedSchedule(ctx context.Context, membershipID int, newSchedule ReservedSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current Membership
	err = tx.QueryRowxContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = $1 FOR UPDATE`,
		membershipID,
	).StructScan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMembershipNotFound
		}
		return err
	}

	// Net counter change per slot: released references decrement,
	// new ones increment.
	deltas := make(map[int]int)
	for _, ids := range current.ReservedSchedule {
		for _, id := range ids {
			deltas[id]--
		}
	}
	for _, ids := range newSchedule {
		for _, id := range ids {
			deltas[id]++
		}
	}

	// Lock slots in id order so concurrent commits cannot deadlock.
	slotIDs := make([]int, 0, len(deltas))
	for id, delta := range deltas {
		if delta != 0 {
			slotIDs = append(slotIDs, id)
		}
	}
	sort.Ints(slotIDs)

	for _, slotID := range slotIDs {
		var slot schedule.TimeSlot
		err = tx.QueryRowxContext(ctx, `
			SELECT id, day_schedule_id, open_time, close_time, capacity, current_reservations, label, display_order, is_active, created_at
			FROM time_slots
			WHERE id = $1
			FOR UPDATE
		`, slotID).StructScan(&slot)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// A released reference to a purged slot is harmless;
				// a new reservation against one is not.
				if deltas[slotID] > 0 {
					return schedule.ErrSlotNotFound
				}
				continue
			}
			return err
		}

		delta := deltas[slotID]
		if delta > 0 {
			if !slot.IsActive {
				return schedule.ErrSlotInactive
			}
			if slot.CurrentReservations+delta > slot.Capacity {
				return schedule.ErrSlotFull
			}
		}

		next := slot.CurrentReservations + delta
		if next < 0 {
			next = 0
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE time_slots SET current_reservations = $1 WHERE id = $2`,
			next, slotID,
		); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE memberships
		SET reserved_schedule = $1, updated_at = NOW()
		WHERE id = $2
	`, newSchedule, membershipID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) EligibleForDeduction(ctx context.Context) ([]Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE status = 'active' AND auto_deduct_days = true AND remaining_days > 0
		ORDER BY id
	`

	var memberships []Membership
	if err := r.db.SelectContext(ctx, &memberships, query); err != nil {
		return nil, err
	}

	return memberships, nil
}

// DeductOne decrements a membership's balance by one day. The WHERE
// guard makes the operation idempotent per calendar day and atomic
// under concurrent triggers: the second caller simply affects no row.
func (r *repository) DeductOne(ctx context.Context, id int, today time.Time) (*DeductOutcome, error) {
	day := today.Format("2006-01-02")

	query := `
		UPDATE memberships
		SET remaining_days = remaining_days - 1,
		    last_deducted_on = $2,
		    status = CASE WHEN remaining_days - 1 = 0 THEN 'expired' ELSE status END,
		    end_date = CASE WHEN remaining_days - 1 = 0 THEN NOW() ELSE end_date END,
		    updated_at = NOW()
		WHERE id = $1
		  AND status = 'active'
		  AND auto_deduct_days = true
		  AND remaining_days > 0
		  AND (last_deducted_on IS NULL OR last_deducted_on < $2)
		RETURNING remaining_days, status
	`

	var row struct {
		RemainingDays int    `db:"remaining_days"`
		Status        Status `db:"status"`
	}
	err := r.db.GetContext(ctx, &row, query, id, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &DeductOutcome{Deducted: false}, nil
		}
		return nil, err
	}

	return &DeductOutcome{
		Deducted:      true,
		RemainingDays: row.RemainingDays,
		Expired:       row.Status == StatusExpired,
	}, nil
}
