package dashboard

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) TrainerCounts(ctx context.Context, trainerID *int, today time.Time) (*TrainerCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM client_profiles
			 WHERE primary_trainer_id IS NOT DISTINCT FROM $1) AS client_count,
			(SELECT COUNT(*) FROM events
			 WHERE trainer_id IS NOT DISTINCT FROM $1) AS event_count,
			(SELECT COUNT(*) FROM memberships m
			 JOIN plans p ON p.id = m.plan_id
			 WHERE p.trainer_id IS NOT DISTINCT FROM $1
			   AND m.status = 'active' AND m.start_date <= $2 AND m.end_date >= $2) AS active_memberships`

	var counts TrainerCounts
	if err := r.db.GetContext(ctx, &counts, query, trainerID, today); err != nil {
		return nil, err
	}

	return &counts, nil
}

func (r *repository) TrainerClients(ctx context.Context, trainerID *int, limit int) ([]ClientSummary, error) {
	query := `
		SELECT cp.user_id, u.name, u.email, cp.level
		FROM client_profiles cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.primary_trainer_id IS NOT DISTINCT FROM $1
		ORDER BY u.name
		LIMIT $2`

	clients := []ClientSummary{}
	if err := r.db.SelectContext(ctx, &clients, query, trainerID, limit); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *repository) TrainerEvents(ctx context.Context, trainerID *int, today time.Time, limit int) ([]EventSummary, error) {
	query := `
		SELECT e.id, e.title, e.date, to_char(e.start_time, 'HH24:MI') AS start_time,
		       e.location, e.event_type, e.capacity, COUNT(r.id) AS registrations_count
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id AND r.status = 'booked'
		WHERE e.trainer_id IS NOT DISTINCT FROM $1
		  AND e.date >= $2 AND e.is_cancelled = FALSE
		GROUP BY e.id
		ORDER BY e.date, e.start_time
		LIMIT $3`

	events := []EventSummary{}
	if err := r.db.SelectContext(ctx, &events, query, trainerID, today, limit); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *repository) AdminCounts(ctx context.Context, today time.Time) (*AdminDashboard, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM trainer_profiles) AS trainers,
			(SELECT COUNT(*) FROM memberships
			 WHERE status = 'active' AND start_date <= $1 AND end_date >= $1) AS active_memberships,
			(SELECT COUNT(*) FROM events
			 WHERE date >= $1 AND is_cancelled = FALSE) AS upcoming_events`

	var counts AdminDashboard
	if err := r.db.GetContext(ctx, &counts, query, today); err != nil {
		return nil, err
	}

	return &counts, nil
}
