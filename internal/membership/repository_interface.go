package membership

import (
	"context"
	"time"
)

type Repository interface {
	CreateIfNoneActive(ctx context.Context, m *Membership, today time.Time) (*Membership, error)
	GetOrCreateForPayment(ctx context.Context, m *Membership, today time.Time) (*Membership, bool, error)
	HasActive(ctx context.Context, userID int, today time.Time) (bool, error)
	FindActive(ctx context.Context, userID int, today time.Time) (*MembershipView, bool, error)
	ListByUser(ctx context.Context, userID int) ([]MembershipView, error)
	Cancel(ctx context.Context, id int) (*Membership, error)
	CancelByPaymentIntent(ctx context.Context, paymentIntentID string) ([]Membership, error)
}
