package deduction

import (
	"net/http"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	scheduler *Scheduler
}

func NewHandler(scheduler *Scheduler) *Handler {
	return &Handler{
		scheduler: scheduler,
	}
}

// @Summary      Run the daily deduction batch
// @Description  Admin-only: triggers the batch immediately. Idempotent per calendar day; a repeat run deducts nothing.
// @Tags         admin,deduction
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} deduction.Report
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/deduction/run [post]
func (h *Handler) RunNow(c *gin.Context) {
	report, err := h.scheduler.RunNow(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Deduction batch failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}
