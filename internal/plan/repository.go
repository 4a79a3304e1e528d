package plan

import (
	"context"
	"database/sql"
	"errors"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

const planColumns = `id, name, description, price, currency, billing_interval, duration_days, trainer_id, is_active, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Plan) (*Plan, error) {
	query := `
		INSERT INTO plans (name, description, price, currency, billing_interval, duration_days, trainer_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING ` + planColumns

	var created Plan
	err := r.db.GetContext(ctx, &created, query,
		p.Name, p.Description, p.Price, p.Currency, p.BillingInterval, p.DurationDays, p.TrainerID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	var p Plan
	err := r.db.GetContext(ctx, &p, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE is_active = TRUE
		ORDER BY price ASC, id ASC
	`

	plans := []Plan{}
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE plans SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}

	return nil
}
