package schedule

import (
	"context"
	"errors"
	"sort"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/metrics"
)

var (
	ErrInvalidWeekday            = errors.New("invalid weekday")
	ErrInvalidSlotWindow         = errors.New("slot open time must be before close time")
	ErrInvalidCapacity           = errors.New("slot capacity must be between 1 and 500")
	ErrCapacityBelowReservations = errors.New("capacity cannot drop below current reservations")
)

const (
	MinCapacity = 1
	MaxCapacity = 500
)

type Service interface {
	ListDays(ctx context.Context) ([]DayWithSlots, error)
	GetDay(ctx context.Context, day Weekday) (*DayWithSlots, error)
	AddTimeSlot(ctx context.Context, day Weekday, req CreateTimeSlotRequest) (*TimeSlot, error)
	RemoveTimeSlot(ctx context.Context, day Weekday, slotID int) error
	UpdateTimeSlot(ctx context.Context, day Weekday, slotID int, req UpdateTimeSlotRequest) (*TimeSlot, error)
	DuplicateTimeSlot(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error)
	RecordWalkIn(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error)
	RemoveWalkIn(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error)
	ToggleDayOpen(ctx context.Context, day Weekday) (*DaySchedule, error)
	GetCapacityMetrics(ctx context.Context) (*CapacityMetrics, error)
	IsOpenNow(ctx context.Context) (bool, error)
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{
		repo:  repo,
		clock: clk,
	}
}

func (s *service) ListDays(ctx context.Context) ([]DayWithSlots, error) {
	days, err := s.repo.GetAllDays(ctx)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[Weekday]DaySchedule, len(days))
	for _, d := range days {
		byWeekday[d.Weekday] = d
	}

	result := make([]DayWithSlots, 0, len(WeekOrder))
	for _, w := range WeekOrder {
		d, ok := byWeekday[w]
		if !ok {
			continue
		}

		slots, err := s.repo.GetSlotsByDay(ctx, d.ID, true)
		if err != nil {
			return nil, err
		}
		result = append(result, DayWithSlots{DaySchedule: d, Slots: slots})
	}

	return result, nil
}

func (s *service) GetDay(ctx context.Context, day Weekday) (*DayWithSlots, error) {
	if !day.Valid() {
		return nil, ErrInvalidWeekday
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return nil, err
	}

	slots, err := s.repo.GetSlotsByDay(ctx, ds.ID, true)
	if err != nil {
		return nil, err
	}

	return &DayWithSlots{DaySchedule: *ds, Slots: slots}, nil
}

// AddTimeSlot creates a slot under the day. A day that was still on a
// traditional single-window schedule is switched to flexible mode.
func (s *service) AddTimeSlot(ctx context.Context, day Weekday, req CreateTimeSlotRequest) (*TimeSlot, error) {
	if !day.Valid() {
		return nil, ErrInvalidWeekday
	}

	open, err := parseClock(req.OpenTime)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	closeAt, err := parseClock(req.CloseTime)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	if open >= closeAt {
		return nil, ErrInvalidSlotWindow
	}

	if req.Capacity < MinCapacity || req.Capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return nil, err
	}

	if !ds.UsesFlexibleSchedule {
		if err := s.repo.EnableFlexible(ctx, day); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetSlotsByDay(ctx, ds.ID, false)
	if err != nil {
		return nil, err
	}

	nextOrder := 0
	for _, slot := range existing {
		if slot.DisplayOrder >= nextOrder {
			nextOrder = slot.DisplayOrder + 1
		}
	}

	return s.repo.CreateTimeSlot(ctx, ds.ID, req.OpenTime, req.CloseTime, req.Capacity, req.Label, nextOrder)
}

func (s *service) RemoveTimeSlot(ctx context.Context, day Weekday, slotID int) error {
	if !day.Valid() {
		return ErrInvalidWeekday
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return err
	}

	return s.repo.DeactivateSlot(ctx, ds.ID, slotID)
}

func (s *service) UpdateTimeSlot(ctx context.Context, day Weekday, slotID int, req UpdateTimeSlotRequest) (*TimeSlot, error) {
	if !day.Valid() {
		return nil, ErrInvalidWeekday
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return nil, err
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.DayScheduleID != ds.ID {
		return nil, ErrSlotNotFound
	}

	if req.OpenTime != nil {
		slot.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		slot.CloseTime = *req.CloseTime
	}
	if req.Capacity != nil {
		slot.Capacity = *req.Capacity
	}
	if req.Label != nil {
		slot.Label = *req.Label
	}

	open, err := parseClock(slot.OpenTime)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	closeAt, err := parseClock(slot.CloseTime)
	if err != nil {
		return nil, ErrInvalidSlotWindow
	}
	if open >= closeAt {
		return nil, ErrInvalidSlotWindow
	}

	if slot.Capacity < MinCapacity || slot.Capacity > MaxCapacity {
		return nil, ErrInvalidCapacity
	}
	if slot.Capacity < slot.CurrentReservations {
		return nil, ErrCapacityBelowReservations
	}

	if err := s.repo.UpdateSlot(ctx, slot); err != nil {
		return nil, err
	}

	return slot, nil
}

// DuplicateTimeSlot clones the slot's window, capacity and label with a
// zeroed reservation counter, placed right after the original.
func (s *service) DuplicateTimeSlot(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error) {
	if !day.Valid() {
		return nil, ErrInvalidWeekday
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return nil, err
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.DayScheduleID != ds.ID {
		return nil, ErrSlotNotFound
	}

	if err := s.repo.ShiftDisplayOrder(ctx, ds.ID, slot.DisplayOrder); err != nil {
		return nil, err
	}

	return s.repo.CreateTimeSlot(ctx, ds.ID, slot.OpenTime, slot.CloseTime, slot.Capacity, slot.Label, slot.DisplayOrder+1)
}

// RecordWalkIn takes one spot in the slot for a front-desk visitor,
// subject to the same capacity check as a member reservation.
func (s *service) RecordWalkIn(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error) {
	if err := s.checkSlotOnDay(ctx, day, slotID); err != nil {
		return nil, err
	}

	if err := s.repo.ReserveSlot(ctx, slotID); err != nil {
		return nil, err
	}

	return s.repo.GetSlotByID(ctx, slotID)
}

// RemoveWalkIn hands the spot back.
func (s *service) RemoveWalkIn(ctx context.Context, day Weekday, slotID int) (*TimeSlot, error) {
	if err := s.checkSlotOnDay(ctx, day, slotID); err != nil {
		return nil, err
	}

	if err := s.repo.ReleaseSlot(ctx, slotID); err != nil {
		return nil, err
	}

	return s.repo.GetSlotByID(ctx, slotID)
}

func (s *service) checkSlotOnDay(ctx context.Context, day Weekday, slotID int) error {
	if !day.Valid() {
		return ErrInvalidWeekday
	}

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return err
	}

	slot, err := s.repo.GetSlotByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.DayScheduleID != ds.ID {
		return ErrSlotNotFound
	}

	return nil
}

func (s *service) ToggleDayOpen(ctx context.Context, day Weekday) (*DaySchedule, error) {
	if !day.Valid() {
		return nil, ErrInvalidWeekday
	}

	return s.repo.ToggleClosed(ctx, day)
}

func (s *service) GetCapacityMetrics(ctx context.Context) (*CapacityMetrics, error) {
	days, err := s.repo.GetAllDays(ctx)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[Weekday]DaySchedule, len(days))
	for _, d := range days {
		byWeekday[d.Weekday] = d
	}

	result := &CapacityMetrics{Days: make([]DayMetrics, 0, len(WeekOrder))}
	bestOccupancy := -1.0

	for _, w := range WeekOrder {
		d, ok := byWeekday[w]
		if !ok {
			continue
		}

		slots, err := s.repo.GetSlotsByDay(ctx, d.ID, true)
		if err != nil {
			return nil, err
		}

		dm := DayMetrics{Weekday: w, IsClosed: d.IsClosed}
		for _, slot := range slots {
			dm.TotalCapacity += slot.Capacity
			dm.TotalReservations += slot.CurrentReservations
		}
		dm.AvailableSpaces = dm.TotalCapacity - dm.TotalReservations
		if dm.TotalCapacity > 0 {
			dm.OccupancyPercent = float64(dm.TotalReservations) / float64(dm.TotalCapacity) * 100
		}

		metrics.SlotOccupancy.WithLabelValues(string(w)).Set(dm.OccupancyPercent)

		// Strict comparison keeps the first weekday in Monday-Sunday
		// order as the winner on ties.
		if dm.OccupancyPercent > bestOccupancy {
			bestOccupancy = dm.OccupancyPercent
			result.BusiestDay = w
		}

		result.TotalCapacity += dm.TotalCapacity
		result.TotalReservations += dm.TotalReservations
		result.Days = append(result.Days, dm)
	}

	result.AvailableSpaces = result.TotalCapacity - result.TotalReservations
	if result.TotalCapacity > 0 {
		result.OccupancyPercent = float64(result.TotalReservations) / float64(result.TotalCapacity) * 100
	}

	sort.SliceStable(result.Days, func(i, j int) bool {
		return weekIndex(result.Days[i].Weekday) < weekIndex(result.Days[j].Weekday)
	})

	return result, nil
}

// IsOpenNow reports whether the gym is currently open: false on a closed
// day, inside any active slot window on a flexible day, inside the
// single open/close window otherwise.
func (s *service) IsOpenNow(ctx context.Context) (bool, error) {
	now := s.clock.Now()
	day := WeekdayFromTime(now)

	ds, err := s.repo.GetDayByWeekday(ctx, day)
	if err != nil {
		return false, err
	}

	if ds.IsClosed {
		return false, nil
	}

	minutes := now.Hour()*60 + now.Minute()

	if ds.UsesFlexibleSchedule {
		slots, err := s.repo.GetSlotsByDay(ctx, ds.ID, true)
		if err != nil {
			return false, err
		}
		for _, slot := range slots {
			open, err := parseClock(slot.OpenTime)
			if err != nil {
				continue
			}
			closeAt, err := parseClock(slot.CloseTime)
			if err != nil {
				continue
			}
			if minutes >= open && minutes < closeAt {
				return true, nil
			}
		}
		return false, nil
	}

	open, err := parseClock(ds.OpenTime)
	if err != nil {
		return false, err
	}
	closeAt, err := parseClock(ds.CloseTime)
	if err != nil {
		return false, err
	}

	return minutes >= open && minutes < closeAt, nil
}

func weekIndex(w Weekday) int {
	for i, d := range WeekOrder {
		if d == w {
			return i
		}
	}
	return len(WeekOrder)
}
