package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"fitclub/internal/logger"
	"fitclub/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
)

const (
	TypeMembershipActivated = "membership_activated"
	TypeMembershipCancelled = "membership_cancelled"
	TypeEventJoined         = "event_joined"
	TypeEventLeft           = "event_left"
	TypeTest                = "test"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

type Service struct {
	redis      *redis.Client
	cfg        Config
	send       func(EmailJob) error
	retryDelay time.Duration
}

func New(cfg Config, rdb *redis.Client) *Service {
	s := &Service{
		redis:      rdb,
		cfg:        cfg,
		retryDelay: 5 * time.Second,
	}
	s.send = s.sendSMTP
	return s
}

// Send queues a plain text message. Delivery happens on the worker started
// with Start.
func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{
		Type:    TypeTest,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
	})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Tries = 0
	job.Created = time.Now()

	if err := s.push(ctx, queueKey, job); err != nil {
		logger.WithError(err).Error("failed to queue email", "type", job.Type, "to", job.To)
		metrics.RecordEmail(job.Type, "queue_failed")
		return err
	}

	metrics.RecordEmail(job.Type, "queued")
	logger.Info("email queued", "type", job.Type, "to", job.To)
	return nil
}

func (s *Service) push(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode email job: %w", err)
	}
	return s.redis.LPush(ctx, key, string(data)).Err()
}

// Start runs the delivery worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")
	defer logger.Info("email worker stopped")

	for ctx.Err() == nil {
		s.processNext(ctx)
	}
}

func (s *Service) processNext(ctx context.Context) {
	popped, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(popped[1]), &job); err != nil {
		logger.WithError(err).Error("dropping malformed email job")
		return
	}

	job.Tries++
	logger.Debug("sending email", "to", job.To, "attempt", job.Tries)

	sendErr := s.send(job)
	switch {
	case sendErr == nil:
		metrics.RecordEmail(job.Type, "sent")
		logger.Info("email sent", "type", job.Type, "to", job.To)

	case job.Tries < maxTries:
		logger.WithError(sendErr).Warn("email delivery failed, retrying", "to", job.To, "attempt", job.Tries)
		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
		// Requeue even on shutdown so the job survives a restart.
		if err := s.push(context.Background(), queueKey, job); err != nil {
			logger.WithError(err).Error("failed to requeue email", "to", job.To)
		}

	default:
		logger.WithError(sendErr).Error("email delivery abandoned", "to", job.To, "attempts", job.Tries)
		metrics.RecordEmail(job.Type, "failed")
		s.saveFailed(job, sendErr)
	}
}

func (s *Service) sendSMTP(job EmailJob) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", job.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", job.Subject)
	msg.WriteString("\r\n")
	msg.WriteString(job.Body)

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := net.JoinHostPort(s.cfg.SMTPHost, s.cfg.SMTPPort)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(msg.String()))
}

type failedJob struct {
	Job    EmailJob  `json:"job"`
	Error  string    `json:"error"`
	Failed time.Time `json:"time"`
}

// saveFailed parks a job on the dead letter list for manual inspection.
func (s *Service) saveFailed(job EmailJob, cause error) {
	entry := failedJob{Job: job, Error: cause.Error(), Failed: time.Now()}
	if err := s.push(context.Background(), failedQueueKey, entry); err != nil {
		logger.WithError(err).Error("failed to record dead email", "to", job.To)
	}
}

// QueueLength reports the pending job count and mirrors it to the queue
// gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) signature() string {
	if s.cfg.FromName == "" {
		return "- The Club"
	}
	return "- " + s.cfg.FromName
}

func (s *Service) SendMembershipActivated(ctx context.Context, to, name, planName string, start, end time.Time) error {
	body := fmt.Sprintf(`Hi %s,

Your membership is active!

Plan: %s
Starts: %s
Valid until: %s

See you at the club!

%s`, name, planName, start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"), s.signature())

	return s.enqueue(ctx, EmailJob{
		Type:    TypeMembershipActivated,
		To:      to,
		Name:    name,
		Subject: "Membership Activated - " + planName,
		Body:    body,
	})
}

func (s *Service) SendMembershipCancelled(ctx context.Context, to, name, planName string) error {
	body := fmt.Sprintf(`Hi %s,

Your membership has been cancelled:

Plan: %s

If you think this is a mistake, just reply to this email.

%s`, name, planName, s.signature())

	return s.enqueue(ctx, EmailJob{
		Type:    TypeMembershipCancelled,
		To:      to,
		Name:    name,
		Subject: "Membership Cancelled - " + planName,
		Body:    body,
	})
}

func (s *Service) SendEventJoined(ctx context.Context, to, name, eventTitle, location string, when time.Time) error {
	body := fmt.Sprintf(`Hi %s,

You're booked in!

Event: %s
Where: %s
When: %s

See you there!

%s`, name, eventTitle, location, when.Format("Jan 2, 2006 at 3:04 PM"), s.signature())

	return s.enqueue(ctx, EmailJob{
		Type:    TypeEventJoined,
		To:      to,
		Name:    name,
		Subject: "Booking Confirmed - " + eventTitle,
		Body:    body,
	})
}

func (s *Service) SendEventLeft(ctx context.Context, to, name, eventTitle string) error {
	body := fmt.Sprintf(`Hi %s,

Your place has been released:

Event: %s

%s`, name, eventTitle, s.signature())

	return s.enqueue(ctx, EmailJob{
		Type:    TypeEventLeft,
		To:      to,
		Name:    name,
		Subject: "Booking Cancelled - " + eventTitle,
		Body:    body,
	})
}
