package registration

import (
	"context"
	"time"
)

type Repository interface {
	Join(ctx context.Context, userID, eventID int, today time.Time) (*Registration, error)
	Leave(ctx context.Context, userID, eventID int) (*Registration, bool, error)
	Get(ctx context.Context, id int) (*Registration, error)
	ListByUser(ctx context.Context, userID int) ([]RegistrationWithEvent, error)
	ListForEvent(ctx context.Context, eventID int) ([]Attendee, error)
	MarkAttendance(ctx context.Context, id int, attended bool, notes *string) (*Registration, error)
}
