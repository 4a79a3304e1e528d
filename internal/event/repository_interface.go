package event

import (
	"context"
	"time"
)

type Repository interface {
	ListVisible(ctx context.Context, userID int, today time.Time, f Filter) ([]EventWithAvailability, error)
	Get(ctx context.Context, id, userID int) (*EventWithAvailability, error)
	Create(ctx context.Context, e *Event) (*Event, error)
	Cancel(ctx context.Context, id int) error
}
