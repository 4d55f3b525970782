package schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      List the weekly schedule
// @Description  Returns all seven day schedules with their active time slots.
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} schedule.DayWithSlots
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedule [get]
func (h *Handler) ListDays(c *gin.Context) {
	days, err := h.service.ListDays(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch schedule"})
		return
	}

	c.JSON(http.StatusOK, days)
}

// @Summary      List time slots for a weekday
// @Tags         schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday (monday..sunday)"
// @Success      200 {object} schedule.DayWithSlots
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /schedule/{day}/slots [get]
func (h *Handler) GetDay(c *gin.Context) {
	day := Weekday(c.Param("day"))

	result, err := h.service.GetDay(c.Request.Context(), day)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Day schedule not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch day schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Is the gym open right now
// @Tags         schedule
// @Produce      json
// @Success      200 {object} gin.H
// @Failure      500 {object} api.ErrorResponse
// @Router       /schedule/open-now [get]
func (h *Handler) OpenNow(c *gin.Context) {
	open, err := h.service.IsOpenNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to resolve opening hours"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"open": open})
}

// @Summary      Add a time slot
// @Description  Admin-only: adds a slot to a weekday. Switches the day to flexible mode if needed.
// @Tags         admin,schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        request body schedule.CreateTimeSlotRequest true "Time slot payload"
// @Success      201 {object} schedule.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots [post]
func (h *Handler) AddTimeSlot(c *gin.Context) {
	day := Weekday(c.Param("day"))

	var req CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	slot, err := h.service.AddTimeSlot(c.Request.Context(), day, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday), errors.Is(err, ErrInvalidSlotWindow), errors.Is(err, ErrInvalidCapacity):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrDayNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Day schedule not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create time slot"})
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// @Summary      Remove a time slot
// @Description  Admin-only: soft-deletes a slot. Historical reservation counts are preserved.
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        slotID path int true "Time slot ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots/{slotID} [delete]
func (h *Handler) RemoveTimeSlot(c *gin.Context) {
	day := Weekday(c.Param("day"))

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	if err := h.service.RemoveTimeSlot(c.Request.Context(), day, slotID); err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to remove time slot"})
		}
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Time slot deactivated"})
}

// @Summary      Update a time slot
// @Tags         admin,schedule
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        slotID path int true "Time slot ID"
// @Param        request body schedule.UpdateTimeSlotRequest true "Fields to update"
// @Success      200 {object} schedule.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots/{slotID} [patch]
func (h *Handler) UpdateTimeSlot(c *gin.Context) {
	day := Weekday(c.Param("day"))

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	var req UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	slot, err := h.service.UpdateTimeSlot(c.Request.Context(), day, slotID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday), errors.Is(err, ErrInvalidSlotWindow), errors.Is(err, ErrInvalidCapacity):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrCapacityBelowReservations):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update time slot"})
		}
		return
	}

	c.JSON(http.StatusOK, slot)
}

// @Summary      Duplicate a time slot
// @Description  Admin-only: clones window, capacity and label with a zeroed reservation counter.
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        slotID path int true "Time slot ID"
// @Success      201 {object} schedule.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots/{slotID}/duplicate [post]
func (h *Handler) DuplicateTimeSlot(c *gin.Context) {
	day := Weekday(c.Param("day"))

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	slot, err := h.service.DuplicateTimeSlot(c.Request.Context(), day, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to duplicate time slot"})
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// @Summary      Record a walk-in visit
// @Description  Admin-only: takes one spot in a slot for a front-desk visitor.
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        slotID path int true "Time slot ID"
// @Success      200 {object} schedule.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots/{slotID}/walk-in [post]
func (h *Handler) RecordWalkIn(c *gin.Context) {
	day := Weekday(c.Param("day"))

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	slot, err := h.service.RecordWalkIn(c.Request.Context(), day, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrSlotFull), errors.Is(err, ErrSlotInactive):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to record walk-in"})
		}
		return
	}

	c.JSON(http.StatusOK, slot)
}

// @Summary      Remove a walk-in visit
// @Description  Admin-only: hands a walk-in spot back to the slot.
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Param        slotID path int true "Time slot ID"
// @Success      200 {object} schedule.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/slots/{slotID}/walk-in [delete]
func (h *Handler) RemoveWalkIn(c *gin.Context) {
	day := Weekday(c.Param("day"))

	slotID, err := strconv.Atoi(c.Param("slotID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid slot ID"})
		return
	}

	slot, err := h.service.RemoveWalkIn(c.Request.Context(), day, slotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrSlotEmpty):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to remove walk-in"})
		}
		return
	}

	c.JSON(http.StatusOK, slot)
}

// @Summary      Toggle a day open or closed
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Param        day path string true "Weekday"
// @Success      200 {object} schedule.DaySchedule
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/schedule/{day}/toggle [post]
func (h *Handler) ToggleDayOpen(c *gin.Context) {
	day := Weekday(c.Param("day"))

	ds, err := h.service.ToggleDayOpen(c.Request.Context(), day)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWeekday):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid weekday"})
		case errors.Is(err, ErrDayNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Day schedule not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to toggle day"})
		}
		return
	}

	c.JSON(http.StatusOK, ds)
}

// @Summary      Capacity metrics
// @Description  Admin-only: per-day capacity, reservations, occupancy and the busiest day.
// @Tags         admin,schedule
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} schedule.CapacityMetrics
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/schedule/metrics [get]
func (h *Handler) GetCapacityMetrics(c *gin.Context) {
	m, err := h.service.GetCapacityMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute capacity metrics"})
		return
	}

	c.JSON(http.StatusOK, m)
}
