package deduction

import (
	"context"
	"fmt"
	"time"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/clock"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/logger"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/membership"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/metrics"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/notifier"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/user"
)

// Report summarizes one batch run.
type Report struct {
	Date          string `json:"date"`
	Processed     int    `json:"processed"`
	ExpiredNow    int    `json:"expired_now"`
	Notifications int    `json:"notifications"`
	Errors        int    `json:"errors"`
	DurationMs    int64  `json:"duration_ms"`
}

// Runner executes the daily deduction batch: every active membership
// with auto-deduct enabled loses one day, at most once per calendar
// day. Per-membership failures are isolated; only a failure to load
// the eligible set aborts the run.
type Runner struct {
	memberships membership.Repository
	users       user.Repository
	gateway     notifier.Gateway
	clock       clock.Clock
	adminEmail  string
}

func NewRunner(memberships membership.Repository, users user.Repository, gateway notifier.Gateway, clk clock.Clock, adminEmail string) *Runner {
	return &Runner{
		memberships: memberships,
		users:       users,
		gateway:     gateway,
		clock:       clk,
		adminEmail:  adminEmail,
	}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	today := r.clock.Now()

	report := &Report{Date: today.Format("2006-01-02")}

	eligible, err := r.memberships.EligibleForDeduction(ctx)
	if err != nil {
		// Batch-level failure: nothing was touched. Escalate and stop.
		logger.Errorf("deduction batch: failed to load eligible memberships: %v", err)
		metrics.RecordDeductionRun("failed")
		r.alertAdmins(ctx, fmt.Sprintf("The daily deduction batch for %s could not load the eligible membership set:\n\n%v\n\nNo memberships were modified.", report.Date, err))
		return nil, err
	}

	logger.Infof("deduction batch: %d eligible memberships on %s", len(eligible), report.Date)

	for i := range eligible {
		m := &eligible[i]

		outcome, err := r.memberships.DeductOne(ctx, m.ID, today)
		if err != nil {
			// Isolated per-membership failure: log, count, continue.
			logger.Errorf("deduction batch: membership %d: %v", m.ID, err)
			report.Errors++
			continue
		}

		if !outcome.Deducted {
			// Already deducted today (manual re-run) or raced to zero.
			continue
		}

		report.Processed++
		metrics.DeductionsProcessedTotal.Inc()

		if outcome.Expired {
			report.ExpiredNow++
			metrics.MembershipsExpiredTotal.Inc()
			metrics.RecordStatusChange(string(membership.StatusExpired))
		}

		if outcome.Expired || m.NotificationThresholds.Contains(outcome.RemainingDays) {
			if r.notifyMember(ctx, m, outcome) {
				report.Notifications++
			}
		}
	}

	report.DurationMs = time.Since(start).Milliseconds()
	metrics.RecordDeductionRun("completed")

	logger.Infof("deduction batch done: processed=%d expired=%d notifications=%d errors=%d duration=%dms",
		report.Processed, report.ExpiredNow, report.Notifications, report.Errors, report.DurationMs)

	if report.Processed > 0 || report.ExpiredNow > 0 {
		r.sendSummary(ctx, report)
	}

	return report, nil
}

// notifyMember sends an expiry warning or expiration notice.
// Notification failures never fail the batch.
func (r *Runner) notifyMember(ctx context.Context, m *membership.Membership, outcome *membership.DeductOutcome) bool {
	u, err := r.users.FindByID(ctx, m.UserID)
	if err != nil {
		logger.Errorf("deduction batch: membership %d: user %d lookup failed: %v", m.ID, m.UserID, err)
		return false
	}

	if !u.NotifyEmail {
		logger.Debugf("deduction batch: user %d has email notifications disabled", u.ID)
		return false
	}

	if outcome.Expired {
		err = r.gateway.SendExpirationNotice(ctx, u.Email, u.Name)
	} else {
		err = r.gateway.SendExpiryWarning(ctx, u.Email, u.Name, outcome.RemainingDays)
	}
	if err != nil {
		logger.Errorf("deduction batch: notification for membership %d failed: %v", m.ID, err)
		return false
	}

	return true
}

func (r *Runner) sendSummary(ctx context.Context, report *Report) {
	body := fmt.Sprintf(`Daily membership deduction summary for %s

Memberships processed: %d
Expired today:         %d
Notifications sent:    %d
Errors:                %d
Duration:              %dms
`, report.Date, report.Processed, report.ExpiredNow, report.Notifications, report.Errors, report.DurationMs)

	if err := r.gateway.SendDailySummary(ctx, r.adminEmail, body); err != nil {
		logger.Errorf("deduction batch: failed to send admin summary: %v", err)
	}
}

func (r *Runner) alertAdmins(ctx context.Context, body string) {
	if err := r.gateway.SendCriticalAlert(ctx, r.adminEmail, body); err != nil {
		logger.Errorf("deduction batch: failed to send critical alert: %v", err)
	}
}
