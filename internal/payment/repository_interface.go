package payment

import "context"

type Repository interface {
	UpsertSucceeded(ctx context.Context, p *Payment) (*Payment, error)
	FindByIntent(ctx context.Context, intentID string) (*Payment, bool, error)
	MarkSucceeded(ctx context.Context, intentID string, chargeID *string) (*Payment, bool, error)
	MarkFailed(ctx context.Context, intentID string) (bool, error)
	MarkRefunded(ctx context.Context, chargeID, intentID string) (*Payment, bool, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	RecordWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error)
	FinishWebhookEvent(ctx context.Context, eventID string, processErr error) error
}
