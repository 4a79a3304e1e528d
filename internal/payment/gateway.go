package payment

import "context"

// Gateway is the payment provider as seen by the service. Configured reports
// whether API calls can be made, WebhookConfigured whether notifications can
// be verified.
type Gateway interface {
	Configured() bool
	WebhookConfigured() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
