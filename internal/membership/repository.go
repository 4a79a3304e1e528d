package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

const membershipColumns = `id, user_id, plan_id, start_date, end_date, status, auto_renew, payment_intent_id, created_at, updated_at`

const viewSelect = `
	SELECT m.id, m.user_id, m.plan_id, m.start_date, m.end_date, m.status, m.auto_renew,
	       m.payment_intent_id, m.created_at, m.updated_at,
	       p.name AS plan_name, p.billing_interval
	FROM memberships m
	JOIN plans p ON p.id = m.plan_id
`

const activeExistsQuery = `
	SELECT EXISTS(
		SELECT 1 FROM memberships
		WHERE user_id = $1 AND status = 'active' AND end_date >= $2
	)
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateIfNoneActive inserts m unless the user already holds an active
// membership on today. The client profile row is locked for the duration so
// concurrent activations for one user serialize.
func (r *repository) CreateIfNoneActive(ctx context.Context, m *Membership, today time.Time) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowxContext(ctx,
		`SELECT user_id FROM client_profiles WHERE user_id = $1 FOR UPDATE`,
		m.UserID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotEligible
		}
		return nil, err
	}

	active, err := db.Exists(ctx, tx, activeExistsQuery, m.UserID, today)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadyActive
	}

	var created Membership
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO memberships (user_id, plan_id, start_date, end_date, status, auto_renew, payment_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+membershipColumns,
		m.UserID, m.PlanID, m.StartDate, m.EndDate, m.Status, m.AutoRenew, m.PaymentIntentID,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

// GetOrCreateForPayment returns the membership issued for m.PaymentIntentID,
// inserting it on first sight. The bool reports whether a row was created.
// When the user is still covered on today the new period is queued to start
// the day after the last covered day, keeping its length.
func (r *repository) GetOrCreateForPayment(ctx context.Context, m *Membership, today time.Time) (*Membership, bool, error) {
	if m.PaymentIntentID == nil || *m.PaymentIntentID == "" {
		return nil, false, errors.New("payment intent id is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// Same lock as CreateIfNoneActive. A payer without a client profile can
	// only gain memberships through this path and the payment intent unique
	// key still guards it.
	var locked int
	err = tx.QueryRowxContext(ctx,
		`SELECT user_id FROM client_profiles WHERE user_id = $1 FOR UPDATE`,
		m.UserID,
	).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	var out Membership
	err = tx.GetContext(ctx, &out,
		`SELECT `+membershipColumns+` FROM memberships WHERE payment_intent_id = $1`,
		*m.PaymentIntentID,
	)
	if err == nil {
		return &out, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	var coveredUntil sql.NullTime
	err = tx.GetContext(ctx, &coveredUntil,
		`SELECT MAX(end_date) FROM memberships WHERE user_id = $1 AND status = 'active' AND end_date >= $2`,
		m.UserID, today,
	)
	if err != nil {
		return nil, false, err
	}

	row := *m
	if coveredUntil.Valid {
		days := int(m.EndDate.Sub(m.StartDate).Hours() / 24)
		row.StartDate = coveredUntil.Time.AddDate(0, 0, 1)
		row.EndDate = row.StartDate.AddDate(0, 0, days)
	}

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO memberships (user_id, plan_id, start_date, end_date, status, auto_renew, payment_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (payment_intent_id) DO NOTHING
		 RETURNING `+membershipColumns,
		row.UserID, row.PlanID, row.StartDate, row.EndDate, row.Status, row.AutoRenew, row.PaymentIntentID,
	).StructScan(&out)
	created := err == nil
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &out,
			`SELECT `+membershipColumns+` FROM memberships WHERE payment_intent_id = $1`,
			*m.PaymentIntentID,
		)
	}
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	return &out, created, nil
}

func (r *repository) HasActive(ctx context.Context, userID int, today time.Time) (bool, error) {
	return db.Exists(ctx, r.db, activeExistsQuery, userID, today)
}

func (r *repository) FindActive(ctx context.Context, userID int, today time.Time) (*MembershipView, bool, error) {
	query := viewSelect + `
		WHERE m.user_id = $1 AND m.status = 'active' AND m.end_date >= $2
		ORDER BY m.end_date DESC
		LIMIT 1
	`

	var v MembershipView
	if err := r.db.GetContext(ctx, &v, query, userID, today); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &v, true, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]MembershipView, error) {
	views := []MembershipView{}
	err := r.db.SelectContext(ctx, &views, viewSelect+`
		WHERE m.user_id = $1
		ORDER BY m.start_date DESC, m.id DESC
	`, userID)
	if err != nil {
		return nil, err
	}

	return views, nil
}

func (r *repository) Cancel(ctx context.Context, id int) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m,
		`UPDATE memberships SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+membershipColumns,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

// CancelByPaymentIntent cancels the membership issued for a payment and
// returns the rows that changed. Already cancelled rows are left alone.
func (r *repository) CancelByPaymentIntent(ctx context.Context, paymentIntentID string) ([]Membership, error) {
	cancelled := []Membership{}
	err := r.db.SelectContext(ctx, &cancelled,
		`UPDATE memberships SET status = 'cancelled', updated_at = NOW()
		 WHERE payment_intent_id = $1 AND status <> 'cancelled'
		 RETURNING `+membershipColumns,
		paymentIntentID,
	)
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}
