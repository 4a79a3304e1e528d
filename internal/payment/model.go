package payment

import (
	"time"

	"fitclub/internal/membership"

	"github.com/jmoiron/sqlx/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Payment mirrors one Stripe payment intent. The intent id is the
// idempotency key for every transition.
type Payment struct {
	ID                    int            `db:"id" json:"id"`
	UserID                int            `db:"user_id" json:"user_id"`
	StripePaymentIntentID string         `db:"stripe_payment_intent_id" json:"stripe_payment_intent_id"`
	StripeChargeID        *string        `db:"stripe_charge_id" json:"stripe_charge_id,omitempty"`
	PlanID                *int           `db:"plan_id" json:"plan_id,omitempty"`
	AmountCents           int64          `db:"amount_cents" json:"amount_cents"`
	Currency              string         `db:"currency" json:"currency"`
	Status                Status         `db:"status" json:"status"`
	PaidAt                *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	Metadata              types.JSONText `db:"metadata" json:"metadata" swaggertype:"object"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Metadata keys written on the checkout session and its payment intent.
const (
	MetaUserID = "user_id"
	MetaPlanID = "plan_id"
)

// CheckoutRequest is what the gateway needs to open a hosted checkout page.
type CheckoutRequest struct {
	UserID        int
	PlanID        int
	CustomerEmail string
	AmountCents   int64
	Currency      string
	ProductName   string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's view of a checkout attempt.
type CheckoutSession struct {
	ID              string
	URL             string
	Paid            bool
	PaymentIntentID string
	ChargeID        string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
}

type IntentEvent struct {
	ID       string
	ChargeID string
	Amount   int64
	Currency string
	Metadata map[string]string
}

type ChargeEvent struct {
	ID              string
	PaymentIntentID string
}

// WebhookEvent is a verified provider notification. Exactly one of Intent,
// Charge or Session is set for the event types this service handles.
type WebhookEvent struct {
	ID      string
	Type    string
	Intent  *IntentEvent
	Charge  *ChargeEvent
	Session *CheckoutSession
}

const (
	EventIntentSucceeded  = "payment_intent.succeeded"
	EventIntentFailed     = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
	EventCheckoutComplete = "checkout.session.completed"
)

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type ConfirmResponse struct {
	Payment          *Payment               `json:"payment"`
	Membership       *membership.Membership `json:"membership"`
	AlreadyProcessed bool                   `json:"already_processed"`
}

type WebhookResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}
