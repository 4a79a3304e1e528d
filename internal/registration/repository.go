package registration

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitclub/internal/db"
	"fitclub/internal/event"
	"fitclub/internal/membership"

	"github.com/jmoiron/sqlx"
)

const registrationColumns = `id, user_id, event_id, status, booked_at, attended, performance_notes`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type lockedEvent struct {
	Date        time.Time `db:"date"`
	Capacity    int       `db:"capacity"`
	IsCancelled bool      `db:"is_cancelled"`
}

// Join books a spot on the event. The event row stays locked until commit so
// concurrent joins see each other's bookings when counting capacity. The
// user's membership is rechecked under the same transaction.
func (r *repository) Join(ctx context.Context, userID, eventID int, today time.Time) (*Registration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var ev lockedEvent
	err = tx.GetContext(ctx, &ev, `SELECT date, capacity, is_cancelled FROM events WHERE id = $1 FOR UPDATE`, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	if ev.IsCancelled {
		return nil, ErrEventCancelled
	}
	if ev.Date.Before(today) {
		return nil, ErrEventPast
	}

	// FOR SHARE holds off a concurrent cancellation of the membership until
	// this booking commits.
	var membershipID int
	err = tx.GetContext(ctx, &membershipID,
		`SELECT id FROM memberships
		 WHERE user_id = $1 AND status = 'active' AND end_date >= $2
		 ORDER BY end_date DESC LIMIT 1 FOR SHARE`,
		userID, today,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, membership.ErrNoMembership
		}
		return nil, err
	}

	var existing Registration
	found := true
	err = tx.GetContext(ctx, &existing,
		`SELECT `+registrationColumns+` FROM registrations WHERE user_id = $1 AND event_id = $2 FOR UPDATE`,
		userID, eventID,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		found = false
	}
	if found && existing.Status == StatusBooked {
		return nil, ErrAlreadyRegistered
	}

	var booked int
	err = tx.GetContext(ctx, &booked,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'booked'`, eventID)
	if err != nil {
		return nil, err
	}
	if booked >= ev.Capacity {
		return nil, ErrEventFull
	}

	var reg Registration
	if found {
		err = tx.GetContext(ctx, &reg,
			`UPDATE registrations SET status = 'booked', booked_at = NOW() WHERE id = $1 RETURNING `+registrationColumns,
			existing.ID,
		)
	} else {
		err = tx.GetContext(ctx, &reg,
			`INSERT INTO registrations (user_id, event_id, status) VALUES ($1, $2, 'booked') RETURNING `+registrationColumns,
			userID, eventID,
		)
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &reg, nil
}

// Leave cancels the caller's booking. cancelled is false when there was
// nothing booked.
func (r *repository) Leave(ctx context.Context, userID, eventID int) (*Registration, bool, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg,
		`UPDATE registrations SET status = 'cancelled'
		 WHERE user_id = $1 AND event_id = $2 AND status = 'booked'
		 RETURNING `+registrationColumns,
		userID, eventID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &reg, true, nil
}

func (r *repository) Get(ctx context.Context, id int) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg, `SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	return &reg, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]RegistrationWithEvent, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.status, r.booked_at, r.attended, r.performance_notes,
		       e.title AS event_title,
		       e.date AS event_date,
		       to_char(e.start_time, 'HH24:MI') AS event_start_time,
		       e.location AS event_location,
		       e.event_type,
		       e.is_cancelled AS event_cancelled
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.date DESC, e.start_time DESC
	`

	regs := []RegistrationWithEvent{}
	if err := r.db.SelectContext(ctx, &regs, query, userID); err != nil {
		return nil, err
	}

	return regs, nil
}

func (r *repository) ListForEvent(ctx context.Context, eventID int) ([]Attendee, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.status, r.booked_at, r.attended, r.performance_notes,
		       u.name AS user_name,
		       u.email AS user_email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.status ASC, r.booked_at ASC
	`

	attendees := []Attendee{}
	if err := r.db.SelectContext(ctx, &attendees, query, eventID); err != nil {
		return nil, err
	}

	return attendees, nil
}

func (r *repository) MarkAttendance(ctx context.Context, id int, attended bool, notes *string) (*Registration, error) {
	var reg Registration
	err := r.db.GetContext(ctx, &reg,
		`UPDATE registrations
		 SET attended = $1, performance_notes = COALESCE($2, performance_notes)
		 WHERE id = $3
		 RETURNING `+registrationColumns,
		attended, notes, id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	return &reg, nil
}
