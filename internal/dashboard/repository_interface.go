package dashboard

import (
	"context"
	"time"
)

// Repository reads aggregate counts. A nil trainerID selects rows that have
// no trainer.
type Repository interface {
	TrainerCounts(ctx context.Context, trainerID *int, today time.Time) (*TrainerCounts, error)
	TrainerClients(ctx context.Context, trainerID *int, limit int) ([]ClientSummary, error)
	TrainerEvents(ctx context.Context, trainerID *int, today time.Time, limit int) ([]EventSummary, error)
	AdminCounts(ctx context.Context, today time.Time) (*AdminDashboard, error)
}
