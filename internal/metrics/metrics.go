package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_memberships_created_total",
			Help: "Total number of memberships created",
		},
		[]string{"duration_type"},
	)

	MembershipStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_membership_status_changes_total",
			Help: "Total number of membership status transitions",
		},
		[]string{"to_status"},
	)

	DeductionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_deduction_runs_total",
			Help: "Total number of daily deduction batch runs",
		},
		[]string{"outcome"},
	)

	DeductionsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_deductions_processed_total",
			Help: "Total number of membership day deductions applied",
		},
	)

	MembershipsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_memberships_expired_total",
			Help: "Total number of memberships expired by the deduction batch",
		},
	)

	SlotReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_slot_reservations_total",
			Help: "Total number of time slot reservation attempts",
		},
		[]string{"result"},
	)

	SlotOccupancy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gym_slot_occupancy_percent",
			Help: "Occupancy percentage per weekday",
		},
		[]string{"weekday"},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordMembershipCreated(durationType string) {
	MembershipsCreatedTotal.WithLabelValues(durationType).Inc()
}

func RecordStatusChange(toStatus string) {
	MembershipStatusChangesTotal.WithLabelValues(toStatus).Inc()
}

func RecordDeductionRun(outcome string) {
	DeductionRunsTotal.WithLabelValues(outcome).Inc()
}

func RecordSlotReservation(result string) {
	SlotReservationsTotal.WithLabelValues(result).Inc()
}

func RecordNotification(notifType, status string) {
	NotificationsQueuedTotal.WithLabelValues(notifType, status).Inc()
}
