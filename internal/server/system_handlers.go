package server

import (
	"net/http"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/api"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/notifier"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// @Summary      Notification queue status
// @Description  Admin-only: current depth of the outbound notification queue.
// @Tags         admin,system
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} gin.H
// @Router       /admin/notifications/queue [get]
func QueueStatus(gateway *notifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		length := gateway.QueueLength(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"queued": length})
	}
}
