package membership

import (
	"fmt"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

// ScheduleError is one structured policy violation found while
// validating a proposed reservation set.
type ScheduleError struct {
	Field   string           `json:"field"`
	Day     schedule.Weekday `json:"day,omitempty"`
	Message string           `json:"message"`
}

type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Errors []ScheduleError `json:"errors"`
}

// ValidateSchedule checks a proposed reserved schedule against a plan
// policy and the current occupancy of the referenced slots. It is a
// pure function of its inputs: policy violations accumulate as
// structured errors and never abort validation early. Slot ids that do
// not resolve (deactivated or unknown) are reported as unavailable.
func ValidateSchedule(policy plan.Policy, proposed ReservedSchedule, slots map[int]schedule.TimeSlot) ValidationResult {
	result := ValidationResult{Valid: true}

	addError := func(field string, day schedule.Weekday, msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, ScheduleError{Field: field, Day: day, Message: msg})
	}

	totalRequested := 0

	for _, day := range schedule.WeekOrder {
		slotIDs, ok := proposed[day]
		if !ok || len(slotIDs) == 0 {
			continue
		}

		totalRequested += len(slotIDs)

		if !policy.AllowsDay(day) {
			addError("allowed_days", day, fmt.Sprintf("%s is not available on this plan", day))
			continue
		}

		if policy.MaxSlotsPerDay > 0 && len(slotIDs) > policy.MaxSlotsPerDay {
			addError("max_slots_per_day", day,
				fmt.Sprintf("requested %d slots, plan allows %d per day", len(slotIDs), policy.MaxSlotsPerDay))
		}

		allowedSlots, restricted := policy.TimeRestrictions[day]

		for _, id := range slotIDs {
			if restricted && !containsInt(allowedSlots, id) {
				addError("time_restrictions", day,
					fmt.Sprintf("slot %d is not allowed on %s for this plan", id, day))
				continue
			}

			slot, found := slots[id]
			if !found || !slot.IsActive {
				addError("slot", day, fmt.Sprintf("slot %d is not available", id))
				continue
			}

			if slot.IsFull() {
				addError("capacity", day, fmt.Sprintf("slot %d is full", id))
			}
		}
	}

	if policy.MaxReservationsPerWeek > 0 && totalRequested > policy.MaxReservationsPerWeek {
		addError("max_reservations_per_week", "",
			fmt.Sprintf("requested %d slots, plan allows %d per week", totalRequested, policy.MaxReservationsPerWeek))
	}

	return result
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
