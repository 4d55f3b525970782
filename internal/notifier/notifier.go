package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/logger"
	"github.com/Alexander199824/gym-membership-backend-sub000/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

// Gateway is the narrow surface the rest of the system notifies
// through. Delivery is best-effort: callers treat failures as
// log-and-continue.
type Gateway interface {
	Send(ctx context.Context, to, name, subject, body string) error
	SendExpiryWarning(ctx context.Context, to, name string, daysRemaining int) error
	SendExpirationNotice(ctx context.Context, to, name string) error
	SendReservationConfirmation(ctx context.Context, to, name, summary string) error
	SendDailySummary(ctx context.Context, to, body string) error
	SendCriticalAlert(ctx context.Context, to, body string) error
}

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Type    string    `json:"type"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// NewWithClient wires an existing redis client, used by tests.
func NewWithClient(client *redis.Client, fromEmail, fromName string) *Service {
	return &Service{
		redis:    client,
		from:     fromEmail,
		fromName: fromName,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Type:    "generic",
		Created: time.Now(),
	})
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		metrics.RecordNotification(job.Type, "marshal_error")
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", job.To, err)
		metrics.RecordNotification(job.Type, "queue_error")
		return err
	}

	metrics.RecordNotification(job.Type, "queued")
	logger.Infof("Notification queued: %s to %s", job.Subject, job.To)
	return nil
}

// Start runs the delivery worker until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification payload: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Warnf("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			metrics.RecordNotification(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent to %s", job.To)
}

func (s *Service) deliver(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendExpiryWarning(ctx context.Context, to, name string, daysRemaining int) error {
	dayWord := "days"
	if daysRemaining == 1 {
		dayWord = "day"
	}

	subject := fmt.Sprintf("Your membership expires in %d %s", daysRemaining, dayWord)
	body := fmt.Sprintf(`Hi %s,

Your gym membership has %d %s of access remaining.

Renew before it runs out to keep your reserved schedule.

- The Gym Team`, name, daysRemaining, dayWord)

	return s.enqueue(ctx, Job{To: to, Name: name, Subject: subject, Body: body, Type: "expiry_warning", Created: time.Now()})
}

func (s *Service) SendExpirationNotice(ctx context.Context, to, name string) error {
	subject := "Your membership has expired"
	body := fmt.Sprintf(`Hi %s,

Your gym membership has used its last day of access and is now expired.

You can purchase a new plan at any time to come back.

- The Gym Team`, name)

	return s.enqueue(ctx, Job{To: to, Name: name, Subject: subject, Body: body, Type: "expired", Created: time.Now()})
}

func (s *Service) SendReservationConfirmation(ctx context.Context, to, name, summary string) error {
	subject := "Schedule reservation confirmed"
	body := fmt.Sprintf(`Hi %s,

Your weekly schedule has been reserved:

%s

See you at the gym!

- The Gym Team`, name, summary)

	return s.enqueue(ctx, Job{To: to, Name: name, Subject: subject, Body: body, Type: "reservation", Created: time.Now()})
}

func (s *Service) SendDailySummary(ctx context.Context, to, body string) error {
	return s.enqueue(ctx, Job{
		To:      to,
		Name:    "Administrator",
		Subject: "Daily membership deduction summary",
		Body:    body,
		Type:    "daily_summary",
		Created: time.Now(),
	})
}

func (s *Service) SendCriticalAlert(ctx context.Context, to, body string) error {
	return s.enqueue(ctx, Job{
		To:      to,
		Name:    "Administrator",
		Subject: "CRITICAL: daily deduction batch failed",
		Body:    body,
		Type:    "critical_alert",
		Created: time.Now(),
	})
}
