package membership

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/api"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/plan"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"

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

// @Summary      Purchase a membership
// @Description  Creates a pending membership for the current user. Activation happens after payment clears.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body membership.CreateMembershipRequest true "Membership payload"
// @Success      201 {object} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} membership.ValidationResult
// @Router       /memberships [post]
func (h *Handler) CreateMembership(c *gin.Context) {
	userID := c.GetInt("user_id")

	var req CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, result, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrPlanNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
		case errors.Is(err, ErrInvalidStartDate):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Start date must be YYYY-MM-DD"})
		case errors.Is(err, schedule.ErrSlotFull), errors.Is(err, schedule.ErrSlotInactive), errors.Is(err, schedule.ErrSlotNotFound):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create membership"})
		}
		return
	}

	if result != nil && !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// @Summary      My memberships
// @Tags         memberships
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} membership.Membership
// @Failure      500 {object} api.ErrorResponse
// @Router       /memberships/mine [get]
func (h *Handler) ListMyMemberships(c *gin.Context) {
	userID := c.GetInt("user_id")

	memberships, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch memberships"})
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// @Summary      Validate a proposed schedule
// @Description  Dry-run validation of a reservation set against the plan policy and slot capacity.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        planID path int true "Plan ID"
// @Param        request body membership.ReserveSlotsRequest true "Proposed schedule"
// @Success      200 {object} membership.ValidationResult
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /plans/{planID}/schedule/validate [post]
func (h *Handler) ValidateSchedule(c *gin.Context) {
	planID, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid plan ID"})
		return
	}

	var req ReserveSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.ValidateSchedule(c.Request.Context(), planID, req.Schedule)
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrPlanNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Plan not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to validate schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary      Reserve time slots
// @Description  Replaces the membership's reserved schedule after policy and capacity validation.
// @Tags         memberships
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Param        request body membership.ReserveSlotsRequest true "Proposed schedule"
// @Success      200 {object} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} membership.ValidationResult
// @Router       /memberships/{membershipID}/schedule [post]
func (h *Handler) ReserveSlots(c *gin.Context) {
	userID := c.GetInt("user_id")

	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	var req ReserveSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, result, err := h.service.ReserveSlots(c.Request.Context(), membershipID, userID, req.Schedule)
	if err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Cannot modify another user's membership"})
		case errors.Is(err, ErrNotReservable):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, schedule.ErrSlotFull), errors.Is(err, schedule.ErrSlotInactive), errors.Is(err, schedule.ErrSlotNotFound):
			// Lost a capacity race at commit time; the caller may retry
			// with a different slot.
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to reserve slots"})
		}
		return
	}

	if result != nil && !result.Valid {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	c.JSON(http.StatusOK, m)
}

// @Summary      Activate a membership
// @Description  Admin-only: marks a pending membership active once payment has cleared.
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/activate [post]
func (h *Handler) Activate(c *gin.Context) {
	h.adminTransition(c, h.service.Activate)
}

// @Summary      Suspend a membership
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/suspend [post]
func (h *Handler) Suspend(c *gin.Context) {
	h.adminTransition(c, h.service.Suspend)
}

// @Summary      Reinstate a suspended membership
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/reinstate [post]
func (h *Handler) Reinstate(c *gin.Context) {
	h.adminTransition(c, h.service.Reinstate)
}

// @Summary      Cancel a membership
// @Tags         admin,memberships
// @Produce      json
// @Security     BearerAuth
// @Param        membershipID path int true "Membership ID"
// @Success      200 {object} membership.Membership
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /admin/memberships/{membershipID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	h.adminTransition(c, h.service.Cancel)
}

func (h *Handler) adminTransition(c *gin.Context, op func(ctx context.Context, id int) (*Membership, error)) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid membership ID"})
		return
	}

	m, err := op(c.Request.Context(), membershipID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMembershipNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Membership not found"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Status transition not allowed"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update membership"})
		}
		return
	}

	c.JSON(http.StatusOK, m)
}
