package schedule

import "context"

type Repository interface {
	Bootstrap(ctx context.Context) error
	GetAllDays(ctx context.Context) ([]DaySchedule, error)
	GetDayByWeekday(ctx context.Context, day Weekday) (*DaySchedule, error)
	ToggleClosed(ctx context.Context, day Weekday) (*DaySchedule, error)
	EnableFlexible(ctx context.Context, day Weekday) error

	CreateTimeSlot(ctx context.Context, dayScheduleID int, openTime, closeTime string, capacity int, label string, displayOrder int) (*TimeSlot, error)
	GetSlotsByDay(ctx context.Context, dayScheduleID int, activeOnly bool) ([]TimeSlot, error)
	GetSlotByID(ctx context.Context, id int) (*TimeSlot, error)
	GetSlotsByIDs(ctx context.Context, ids []int) ([]TimeSlot, error)
	UpdateSlot(ctx context.Context, slot *TimeSlot) error
	DeactivateSlot(ctx context.Context, dayScheduleID, slotID int) error
	ShiftDisplayOrder(ctx context.Context, dayScheduleID, afterOrder int) error

	ReserveSlot(ctx context.Context, slotID int) error
	ReleaseSlot(ctx context.Context, slotID int) error
}
