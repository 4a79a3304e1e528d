package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

const paymentColumns = `id, user_id, stripe_payment_intent_id, stripe_charge_id, plan_id, amount_cents,
	currency, status, paid_at, metadata, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// UpsertSucceeded records a settled payment keyed by its intent id. A
// refunded payment is never moved back to succeeded, and the first charge id
// and paid_at win.
func (r *repository) UpsertSucceeded(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (
			user_id, stripe_payment_intent_id, stripe_charge_id, plan_id,
			amount_cents, currency, status, paid_at, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'succeeded', NOW(), $7)
		ON CONFLICT (stripe_payment_intent_id) DO UPDATE SET
			status = CASE WHEN payments.status = 'refunded' THEN payments.status ELSE 'succeeded' END,
			stripe_charge_id = COALESCE(payments.stripe_charge_id, EXCLUDED.stripe_charge_id),
			plan_id = COALESCE(payments.plan_id, EXCLUDED.plan_id),
			paid_at = COALESCE(payments.paid_at, EXCLUDED.paid_at),
			updated_at = NOW()
		RETURNING ` + paymentColumns

	metadata := string(p.Metadata)
	if metadata == "" {
		metadata = "{}"
	}

	var saved Payment
	err := r.db.GetContext(ctx, &saved, query,
		p.UserID, p.StripePaymentIntentID, p.StripeChargeID, p.PlanID,
		p.AmountCents, p.Currency, metadata,
	)
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

func (r *repository) FindByIntent(ctx context.Context, intentID string) (*Payment, bool, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payments WHERE stripe_payment_intent_id = $1`, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &p, true, nil
}

// MarkSucceeded settles a known payment. found is false when no payment
// exists for the intent or it was already refunded.
func (r *repository) MarkSucceeded(ctx context.Context, intentID string, chargeID *string) (*Payment, bool, error) {
	query := `
		UPDATE payments
		SET status = 'succeeded',
		    stripe_charge_id = COALESCE(stripe_charge_id, $2),
		    paid_at = COALESCE(paid_at, NOW()),
		    updated_at = NOW()
		WHERE stripe_payment_intent_id = $1 AND status <> 'refunded'
		RETURNING ` + paymentColumns

	var p Payment
	if err := r.db.GetContext(ctx, &p, query, intentID, chargeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &p, true, nil
}

func (r *repository) MarkFailed(ctx context.Context, intentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = 'failed', updated_at = NOW()
		WHERE stripe_payment_intent_id = $1 AND status NOT IN ('succeeded', 'refunded')`,
		intentID,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// MarkRefunded looks the payment up by charge id, falling back to the
// intent id for payments confirmed before the charge id was known.
func (r *repository) MarkRefunded(ctx context.Context, chargeID, intentID string) (*Payment, bool, error) {
	query := `
		UPDATE payments
		SET status = 'refunded',
		    stripe_charge_id = COALESCE(stripe_charge_id, NULLIF($1, '')),
		    updated_at = NOW()
		WHERE (stripe_charge_id = $1 OR stripe_payment_intent_id = $2)
		RETURNING ` + paymentColumns

	var p Payment
	if err := r.db.GetContext(ctx, &p, query, chargeID, intentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &p, true, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

// RecordWebhookEvent stores the delivery and reports whether an earlier
// delivery of the same event was already processed.
func (r *repository) RecordWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	var processed bool
	err := r.db.GetContext(ctx, &processed, `
		INSERT INTO stripe_webhook_events (stripe_event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (stripe_event_id) DO UPDATE SET event_type = EXCLUDED.event_type
		RETURNING processed`,
		eventID, eventType,
	)
	return processed, err
}

// FinishWebhookEvent marks the event processed, or stores the error so a
// redelivery is processed again.
func (r *repository) FinishWebhookEvent(ctx context.Context, eventID string, processErr error) error {
	if processErr != nil {
		_, err := r.db.ExecContext(ctx,
			`UPDATE stripe_webhook_events SET error_message = $2 WHERE stripe_event_id = $1`,
			eventID, processErr.Error(),
		)
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE stripe_webhook_events SET processed = TRUE, error_message = NULL, processed_at = NOW() WHERE stripe_event_id = $1`,
		eventID,
	)
	return err
}
