package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

var slotColumns = []string{
	"id", "day_schedule_id", "open_time", "close_time", "capacity",
	"current_reservations", "label", "display_order", "is_active", "created_at",
}

func slotRow(id, capacity, reserved int, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(slotColumns).
		AddRow(id, 1, "06:00", "07:00", capacity, reserved, "", 0, active, time.Now())
}

func TestBootstrapSeedsSevenDays(t *testing.T) {
	repo, mock := newMockRepo(t)

	for _, day := range WeekOrder {
		mock.ExpectExec(`INSERT INTO day_schedules`).
			WithArgs(day, day == Sunday).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	err := repo.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlot(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(10).
		WillReturnRows(slotRow(10, 20, 5, true))
	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReserveSlot(context.Background(), 10)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveSlotFull(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(10).
		WillReturnRows(slotRow(10, 20, 20, true))
	mock.ExpectRollback()

	err := repo.ReserveSlot(context.Background(), 10)
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestReserveSlotInactive(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(10).
		WillReturnRows(slotRow(10, 20, 5, false))
	mock.ExpectRollback()

	err := repo.ReserveSlot(context.Background(), 10)
	assert.ErrorIs(t, err, ErrSlotInactive)
}

func TestReserveSlotNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(slotColumns))
	mock.ExpectRollback()

	err := repo.ReserveSlot(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestReleaseSlot(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(10).
		WillReturnRows(slotRow(10, 20, 5, true))
	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReleaseSlot(context.Background(), 10)
	require.NoError(t, err)
}

func TestReleaseSlotEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
		WithArgs(10).
		WillReturnRows(slotRow(10, 20, 0, true))
	mock.ExpectRollback()

	err := repo.ReleaseSlot(context.Background(), 10)
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestUpdateSlotGuardsCapacity(t *testing.T) {
	repo, mock := newMockRepo(t)

	slot := &TimeSlot{ID: 10, OpenTime: "06:00", CloseTime: "07:00", Capacity: 3, Label: "", DisplayOrder: 0}

	// Capacity below booked count: the guard matches no row.
	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs("06:00", "07:00", 3, "", 0, 10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSlot(context.Background(), slot)
	assert.ErrorIs(t, err, ErrCapacityBelowReservations)
}

func TestDeactivateSlotNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs(99, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateSlot(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGetSlotsByIDsEmptyInput(t *testing.T) {
	repo, _ := newMockRepo(t)

	slots, err := repo.GetSlotsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetDayByWeekdayNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT (.+) FROM day_schedules`).
		WithArgs(Monday).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetDayByWeekday(context.Background(), Monday)
	assert.ErrorIs(t, err, ErrDayNotFound)
}
