package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

const eventColumns = `
	e.id, e.trainer_id, e.title, e.description, e.date,
	to_char(e.start_time, 'HH24:MI') AS start_time,
	to_char(e.end_time, 'HH24:MI') AS end_time,
	e.location, e.event_type, e.capacity, e.is_cancelled,
	e.distance_km, e.target_reps, e.price_member, e.price_non_member, e.created_at`

// availabilitySelect expects the caller's user id as $1. Only booked
// registrations count towards capacity.
const availabilitySelect = `
	SELECT` + eventColumns + `,
	       COALESCE(NULLIF(tp.display_name, ''), u.name, '') AS trainer_name,
	       COUNT(r.id) AS registrations_count,
	       COALESCE(BOOL_OR(r.user_id = $1), FALSE) AS joined
	FROM events e
	LEFT JOIN trainer_profiles tp ON tp.id = e.trainer_id
	LEFT JOIN users u ON u.id = tp.user_id
	LEFT JOIN registrations r ON r.event_id = e.id AND r.status = 'booked'
`

const availabilityGroupBy = ` GROUP BY e.id, tp.display_name, u.name`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListVisible(ctx context.Context, userID int, today time.Time, f Filter) ([]EventWithAvailability, error) {
	conditions := []string{"e.date >= $2", "e.is_cancelled = FALSE"}
	args := []interface{}{userID, today}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.TrainerID != nil {
		add("e.trainer_id = $%d", *f.TrainerID)
	}
	if f.Type != nil {
		add("e.event_type = $%d", string(*f.Type))
	}
	if f.MinDistance != nil {
		add("e.distance_km >= $%d", *f.MinDistance)
	}
	if f.MaxDistance != nil {
		add("e.distance_km <= $%d", *f.MaxDistance)
	}

	query := availabilitySelect +
		" WHERE " + strings.Join(conditions, " AND ") +
		availabilityGroupBy +
		" ORDER BY e.date ASC, e.start_time ASC"

	events := []EventWithAvailability{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *repository) Get(ctx context.Context, id, userID int) (*EventWithAvailability, error) {
	query := availabilitySelect + " WHERE e.id = $2" + availabilityGroupBy

	var e EventWithAvailability
	if err := r.db.GetContext(ctx, &e, query, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	return &e, nil
}

func (r *repository) Create(ctx context.Context, e *Event) (*Event, error) {
	query := `
		INSERT INTO events AS e (
			trainer_id, title, description, date, start_time, end_time, location,
			event_type, capacity, distance_km, target_reps, price_member, price_non_member
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING` + eventColumns

	var created Event
	err := r.db.GetContext(ctx, &created, query,
		e.TrainerID, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Location,
		string(e.EventType), e.Capacity, e.DistanceKm, e.TargetReps, e.PriceMember, e.PriceNonMember,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE events SET is_cancelled = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}

	return nil
}
