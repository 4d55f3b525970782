package membership

import (
	"context"
	"time"
)

// DeductOutcome reports what a guarded deduction did to one row.
type DeductOutcome struct {
	Deducted      bool
	RemainingDays int
	Expired       bool
}

type Repository interface {
	Create(ctx context.Context, m *Membership) (*Membership, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	GetByUser(ctx context.Context, userID int) ([]Membership, error)
	UpdateStatus(ctx context.Context, id int, from, to Status) error

	// CommitReservedSchedule atomically swaps a membership's reserved
	// schedule: previously held slot counters are released, newly
	// requested ones are taken under row locks, and the membership row
	// is updated, all in one transaction.
	CommitReservedSchedule(ctx context.Context, membershipID int, newSchedule ReservedSchedule) error

	// EligibleForDeduction loads memberships with status=active,
	// auto_deduct_days=true and remaining_days > 0.
	EligibleForDeduction(ctx context.Context) ([]Membership, error)

	// DeductOne applies the daily deduction to a single row with an
	// idempotence guard on the calendar day; a second call on the same
	// day reports Deducted=false.
	DeductOne(ctx context.Context, id int, today time.Time) (*DeductOutcome, error)
}
