package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitclub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MembershipsActivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_memberships_activated_total",
			Help: "Memberships created, by source (direct or payment)",
		},
		[]string{"source", "interval"},
	)

	MembershipsCancelledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_memberships_cancelled_total",
			Help: "Memberships cancelled, by reason",
		},
		[]string{"reason"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_registrations_total",
			Help: "Event registration outcomes",
		},
		[]string{"action", "result"},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_checkout_sessions_total",
			Help: "Stripe checkout sessions by outcome",
		},
		[]string{"status"},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_payments_total",
			Help: "Payment status transitions",
		},
		[]string{"status"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_webhook_events_total",
			Help: "Stripe webhook deliveries by event type and result",
		},
		[]string{"type", "result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitclub_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordMembershipActivated(source, interval string) {
	MembershipsActivatedTotal.WithLabelValues(source, interval).Inc()
}

func RecordMembershipCancelled(reason string) {
	MembershipsCancelledTotal.WithLabelValues(reason).Inc()
}

func RecordRegistration(action, result string) {
	RegistrationsTotal.WithLabelValues(action, result).Inc()
}

func RecordCheckoutSession(status string) {
	CheckoutSessionsTotal.WithLabelValues(status).Inc()
}

func RecordPayment(status string) {
	PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordWebhookEvent(eventType, result string) {
	WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
