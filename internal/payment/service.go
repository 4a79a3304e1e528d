package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fitclub/internal/logger"
	"fitclub/internal/membership"
	"fitclub/internal/metrics"
	"fitclub/internal/plan"

	"github.com/samber/lo"
)

var (
	ErrNotConfigured        = errors.New("payments are not configured")
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
	ErrProvider             = errors.New("payment provider error")
	ErrInvalidSignature     = errors.New("invalid webhook signature or payload")
	ErrMissingSession       = errors.New("session_id is required")
	ErrSessionMismatch      = errors.New("checkout session belongs to another user")
	ErrPaymentNotCompleted  = errors.New("payment has not completed")
	ErrInvalidMetadata      = errors.New("checkout session metadata is missing or malformed")
	ErrPaymentRefunded      = errors.New("payment has been refunded")
)

const maxDescriptionLength = 200

type Memberships interface {
	CheckEligibility(ctx context.Context, userID, planID int) (*plan.Plan, error)
	ReconcileFromPayment(ctx context.Context, grant membership.PaymentGrant) (*membership.Membership, bool, error)
	CancelForPayment(ctx context.Context, paymentIntentID string) error
}

type Config struct {
	Currency      string
	PublicBaseURL string
	Timeout       time.Duration
}

type Service interface {
	CreateCheckout(ctx context.Context, userID int, email string, planID int) (*CheckoutResponse, error)
	ConfirmCheckout(ctx context.Context, userID int, sessionID string) (*ConfirmResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResponse, error)
	ListPayments(ctx context.Context, userID int) ([]Payment, error)
}

type service struct {
	repo        Repository
	gateway     Gateway
	memberships Memberships
	cfg         Config
}

func NewService(repo Repository, gateway Gateway, memberships Memberships, cfg Config) Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &service{repo: repo, gateway: gateway, memberships: memberships, cfg: cfg}
}

func (s *service) CreateCheckout(ctx context.Context, userID int, email string, planID int) (*CheckoutResponse, error) {
	if !s.gateway.Configured() {
		return nil, ErrNotConfigured
	}

	p, err := s.memberships.CheckEligibility(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	currency := p.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		UserID:        userID,
		PlanID:        p.ID,
		CustomerEmail: email,
		AmountCents:   p.AmountCents(),
		Currency:      currency,
		ProductName:   p.DisplayName(),
		Description:   truncate(p.Description, maxDescriptionLength),
		SuccessURL:    s.cfg.PublicBaseURL + "/payments/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.PublicBaseURL + "/payments/cancel",
	})
	if err != nil {
		metrics.RecordCheckoutSession("error")
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	metrics.RecordCheckoutSession("created")
	logger.Info("checkout session created", "session_id", session.ID, "user_id", userID, "plan_id", p.ID)

	return &CheckoutResponse{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ConfirmCheckout settles a checkout the caller returned from. Each step is
// idempotent on the payment intent id, so a repeated visit or a concurrent
// webhook converges on one payment and one membership.
func (s *service) ConfirmCheckout(ctx context.Context, userID int, sessionID string) (*ConfirmResponse, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	if !s.gateway.Configured() {
		return nil, ErrNotConfigured
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	session, err := s.gateway.GetCheckoutSession(fetchCtx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	grant, err := grantFromMetadata(session.Metadata, session.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if grant.UserID != userID {
		logger.Warn("checkout session user mismatch", "session_id", sessionID, "user_id", userID, "session_user_id", grant.UserID)
		return nil, ErrSessionMismatch
	}
	if !session.Paid || session.PaymentIntentID == "" {
		return nil, ErrPaymentNotCompleted
	}

	return s.settle(ctx, session, grant)
}

// settle records the payment and issues the membership it pays for.
func (s *service) settle(ctx context.Context, session *CheckoutSession, grant membership.PaymentGrant) (*ConfirmResponse, error) {
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return nil, err
	}

	var chargeID *string
	if session.ChargeID != "" {
		chargeID = lo.ToPtr(session.ChargeID)
	}

	p, err := s.repo.UpsertSucceeded(ctx, &Payment{
		UserID:                grant.UserID,
		StripePaymentIntentID: grant.PaymentIntentID,
		StripeChargeID:        chargeID,
		PlanID:                lo.ToPtr(grant.PlanID),
		AmountCents:           session.AmountTotal,
		Currency:              session.Currency,
		Metadata:              metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if p.Status == StatusRefunded {
		return nil, ErrPaymentRefunded
	}

	m, created, err := s.memberships.ReconcileFromPayment(ctx, grant)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.RecordPayment(string(StatusSucceeded))
		logger.Info("payment settled", "payment_id", p.ID, "payment_intent", grant.PaymentIntentID, "membership_id", m.ID)
	}

	return &ConfirmResponse{Payment: p, Membership: m, AlreadyProcessed: !created}, nil
}

func grantFromMetadata(meta map[string]string, intentID string) (membership.PaymentGrant, error) {
	userID, err := strconv.Atoi(meta[MetaUserID])
	if err != nil || userID <= 0 {
		return membership.PaymentGrant{}, ErrInvalidMetadata
	}
	planID, err := strconv.Atoi(meta[MetaPlanID])
	if err != nil || planID <= 0 {
		return membership.PaymentGrant{}, ErrInvalidMetadata
	}

	return membership.PaymentGrant{UserID: userID, PlanID: planID, PaymentIntentID: intentID}, nil
}

// HandleWebhook verifies and applies a provider notification. Deliveries of
// an event that was already processed are acknowledged without side effects.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResponse, error) {
	if !s.gateway.WebhookConfigured() {
		return nil, ErrWebhookNotConfigured
	}

	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		metrics.RecordWebhookEvent("unknown", "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	processed, err := s.repo.RecordWebhookEvent(ctx, ev.ID, ev.Type)
	if err != nil {
		metrics.RecordWebhookEvent(ev.Type, "error")
		return nil, fmt.Errorf("failed to record webhook event: %w", err)
	}
	if processed {
		metrics.RecordWebhookEvent(ev.Type, "duplicate")
		logger.Debug("webhook event already processed", "event_id", ev.ID, "type", ev.Type)
		return &WebhookResponse{Received: true, Duplicate: true}, nil
	}

	processErr := s.dispatch(ctx, ev)

	if err := s.repo.FinishWebhookEvent(ctx, ev.ID, processErr); err != nil {
		logger.WithError(err).Warn("failed to update webhook event", "event_id", ev.ID)
	}

	if processErr != nil {
		metrics.RecordWebhookEvent(ev.Type, "error")
		logger.WithError(processErr).Error("webhook processing failed", "event_id", ev.ID, "type", ev.Type)
		return nil, processErr
	}

	metrics.RecordWebhookEvent(ev.Type, "processed")
	return &WebhookResponse{Received: true}, nil
}

func (s *service) dispatch(ctx context.Context, ev *WebhookEvent) error {
	switch {
	case ev.Type == EventIntentSucceeded && ev.Intent != nil:
		return s.onIntentSucceeded(ctx, ev.Intent)
	case ev.Type == EventIntentFailed && ev.Intent != nil:
		return s.onIntentFailed(ctx, ev.Intent)
	case ev.Type == EventChargeRefunded && ev.Charge != nil:
		return s.onChargeRefunded(ctx, ev.Charge)
	case ev.Type == EventCheckoutComplete && ev.Session != nil:
		return s.onCheckoutCompleted(ctx, ev.Session)
	}

	logger.Debug("webhook event ignored", "event_id", ev.ID, "type", ev.Type)
	return nil
}

func (s *service) onIntentSucceeded(ctx context.Context, intent *IntentEvent) error {
	var chargeID *string
	if intent.ChargeID != "" {
		chargeID = lo.ToPtr(intent.ChargeID)
	}

	p, found, err := s.repo.MarkSucceeded(ctx, intent.ID, chargeID)
	if err != nil {
		return fmt.Errorf("failed to mark payment succeeded: %w", err)
	}
	if !found {
		logger.Debug("no payment for intent", "payment_intent", intent.ID)
		return nil
	}
	if p.PlanID == nil {
		return nil
	}

	_, created, err := s.memberships.ReconcileFromPayment(ctx, membership.PaymentGrant{
		UserID:          p.UserID,
		PlanID:          *p.PlanID,
		PaymentIntentID: p.StripePaymentIntentID,
	})
	if err != nil {
		return err
	}
	if created {
		metrics.RecordPayment(string(StatusSucceeded))
	}

	return nil
}

func (s *service) onIntentFailed(ctx context.Context, intent *IntentEvent) error {
	updated, err := s.repo.MarkFailed(ctx, intent.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if updated {
		metrics.RecordPayment(string(StatusFailed))
		logger.Info("payment failed", "payment_intent", intent.ID)
	}
	return nil
}

func (s *service) onChargeRefunded(ctx context.Context, charge *ChargeEvent) error {
	p, found, err := s.repo.MarkRefunded(ctx, charge.ID, charge.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	if !found {
		logger.Debug("no payment for refunded charge", "charge_id", charge.ID)
		return nil
	}

	metrics.RecordPayment(string(StatusRefunded))
	logger.Info("payment refunded", "payment_id", p.ID, "payment_intent", p.StripePaymentIntentID)

	return s.memberships.CancelForPayment(ctx, p.StripePaymentIntentID)
}

func (s *service) onCheckoutCompleted(ctx context.Context, session *CheckoutSession) error {
	if !session.Paid || session.PaymentIntentID == "" {
		return nil
	}

	grant, err := grantFromMetadata(session.Metadata, session.PaymentIntentID)
	if err != nil {
		logger.Warn("checkout session without usable metadata", "session_id", session.ID)
		return nil
	}

	_, err = s.settle(ctx, session, grant)
	if errors.Is(err, ErrPaymentRefunded) {
		return nil
	}
	return err
}

func (s *service) ListPayments(ctx context.Context, userID int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}
