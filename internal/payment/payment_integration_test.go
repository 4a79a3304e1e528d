package payment_test

import (
	"context"
	"errors"
	"testing"

	"fitclub/internal/dbtest"
	"fitclub/internal/payment"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSucceededIsIdempotent(t *testing.T) {
	database := dbtest.Open(t)
	repo := payment.NewRepository(database)
	ctx := context.Background()

	userID := dbtest.CreateClient(t, database, "Ann", "ann@example.com")
	planID := dbtest.CreatePlan(t, database, "Gold", "29.99", "monthly")

	p := &payment.Payment{
		UserID:                userID,
		StripePaymentIntentID: "pi_1",
		PlanID:                lo.ToPtr(planID),
		AmountCents:           2999,
		Currency:              "gbp",
		Metadata:              []byte(`{"user_id":"1"}`),
	}

	first, err := repo.UpsertSucceeded(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSucceeded, first.Status)
	assert.Nil(t, first.StripeChargeID)

	p.StripeChargeID = lo.ToPtr("ch_1")
	second, err := repo.UpsertSucceeded(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ch_1", *second.StripeChargeID)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM payments`))
	assert.Equal(t, 1, count)
}

func TestRefundedPaymentStaysRefunded(t *testing.T) {
	database := dbtest.Open(t)
	repo := payment.NewRepository(database)
	ctx := context.Background()

	userID := dbtest.CreateClient(t, database, "Ann", "ann@example.com")

	p := &payment.Payment{UserID: userID, StripePaymentIntentID: "pi_2", AmountCents: 1000, Currency: "gbp"}
	_, err := repo.UpsertSucceeded(ctx, p)
	require.NoError(t, err)

	refunded, found, err := repo.MarkRefunded(ctx, "ch_2", "pi_2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ch_2", *refunded.StripeChargeID)

	again, err := repo.UpsertSucceeded(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusRefunded, again.Status)

	_, found, err = repo.MarkSucceeded(ctx, "pi_2", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWebhookEventLifecycle(t *testing.T) {
	database := dbtest.Open(t)
	repo := payment.NewRepository(database)
	ctx := context.Background()

	processed, err := repo.RecordWebhookEvent(ctx, "evt_1", payment.EventIntentSucceeded)
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, repo.FinishWebhookEvent(ctx, "evt_1", errors.New("temporary")))

	processed, err = repo.RecordWebhookEvent(ctx, "evt_1", payment.EventIntentSucceeded)
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, repo.FinishWebhookEvent(ctx, "evt_1", nil))

	processed, err = repo.RecordWebhookEvent(ctx, "evt_1", payment.EventIntentSucceeded)
	require.NoError(t, err)
	assert.True(t, processed)
}
