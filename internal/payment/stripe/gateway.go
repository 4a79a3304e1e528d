package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fitclub/internal/payment"

	stripe "github.com/stripe/stripe-go/v82"
	checksession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration

	// BaseURL overrides the Stripe API endpoint.
	BaseURL string
}

// Gateway talks to Stripe Checkout. It holds its own backend so the process
// wide stripe.Key is never touched.
type Gateway struct {
	cfg      Config
	sessions *checksession.Client
}

func New(cfg Config) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	return &Gateway{
		cfg: cfg,
		sessions: &checksession.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
	}
}

func (g *Gateway) Configured() bool {
	return g.cfg.SecretKey != ""
}

func (g *Gateway) WebhookConfigured() bool {
	return g.cfg.WebhookSecret != ""
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	meta := map[string]string{
		payment.MetaUserID: strconv.Itoa(req.UserID),
		payment.MetaPlanID: strconv.Itoa(req.PlanID),
	}

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(req.Currency),
					UnitAmount:  stripe.Int64(req.AmountCents),
					ProductData: product,
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(strconv.Itoa(req.UserID)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range meta {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return toSession(s), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (*payment.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	params.Context = ctx

	s, err := g.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}

	return toSession(s), nil
}

func toSession(s *stripe.CheckoutSession) *payment.CheckoutSession {
	out := &payment.CheckoutSession{
		ID:          s.ID,
		URL:         s.URL,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
		if s.PaymentIntent.LatestCharge != nil {
			out.ChargeID = s.PaymentIntent.LatestCharge.ID
		}
	}
	return out
}

// ParseWebhook verifies the signature and decodes the objects of the event
// types the payment service acts on. Other types come back with only ID and
// Type set.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, err
	}

	out := &payment.WebhookEvent{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case payment.EventIntentSucceeded, payment.EventIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.Intent = &payment.IntentEvent{
			ID:       pi.ID,
			Amount:   pi.Amount,
			Currency: string(pi.Currency),
			Metadata: pi.Metadata,
		}
		if pi.LatestCharge != nil {
			out.Intent.ChargeID = pi.LatestCharge.ID
		}

	case payment.EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		out.Charge = &payment.ChargeEvent{ID: ch.ID}
		if ch.PaymentIntent != nil {
			out.Charge.PaymentIntentID = ch.PaymentIntent.ID
		}

	case payment.EventCheckoutComplete:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = toSession(&cs)
	}

	return out, nil
}
