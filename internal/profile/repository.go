package profile

import (
	"context"
	"database/sql"
	"errors"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

const clientColumns = `user_id, phone, emergency_contact_name, emergency_contact_phone, level, primary_trainer_id, created_at, updated_at`

// Trainer rows fall back to the account name when no display name was set.
const trainerSelect = `
	SELECT tp.id, tp.user_id, COALESCE(NULLIF(tp.display_name, ''), u.name) AS display_name,
	       tp.bio, tp.specialties, tp.instagram_url, tp.website_url, tp.created_at
	FROM trainer_profiles tp
	JOIN users u ON u.id = tp.user_id
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindClient(ctx context.Context, userID int) (*ClientProfile, bool, error) {
	var p ClientProfile
	err := r.db.GetContext(ctx, &p, `SELECT `+clientColumns+` FROM client_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &p, true, nil
}

func (r *repository) UpdateClient(ctx context.Context, userID int, req UpdateClientRequest) (*ClientProfile, error) {
	query := `
		UPDATE client_profiles
		SET phone = COALESCE($1, phone),
		    emergency_contact_name = COALESCE($2, emergency_contact_name),
		    emergency_contact_phone = COALESCE($3, emergency_contact_phone),
		    level = COALESCE($4, level),
		    updated_at = NOW()
		WHERE user_id = $5
		RETURNING ` + clientColumns

	var level *string
	if req.Level != nil {
		s := string(*req.Level)
		level = &s
	}

	var p ClientProfile
	err := r.db.GetContext(ctx, &p, query,
		req.Phone, req.EmergencyContactName, req.EmergencyContactPhone, level, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) AssignTrainer(ctx context.Context, clientUserID int, trainerID *int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE client_profiles SET primary_trainer_id = $1, updated_at = NOW() WHERE user_id = $2`,
		trainerID, clientUserID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrTrainerNotFound
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClientNotFound
	}

	return nil
}

// CreateTrainer inserts the trainer profile and promotes the account to the
// trainer role in one transaction. Admin accounts keep their role.
func (r *repository) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*TrainerProfile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO trainer_profiles (user_id, display_name, bio, specialties, instagram_url, website_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		req.UserID, req.DisplayName, req.Bio, req.Specialties, req.InstagramURL, req.WebsiteURL,
	).Scan(&id)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return nil, ErrTrainerExists
		case db.IsForeignKeyViolation(err):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET role = 'trainer' WHERE id = $1 AND role <> 'admin'`,
		req.UserID,
	)
	if err != nil {
		return nil, err
	}

	var p TrainerProfile
	if err := tx.GetContext(ctx, &p, trainerSelect+` WHERE tp.id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) FindTrainerByUser(ctx context.Context, userID int) (*TrainerProfile, bool, error) {
	var p TrainerProfile
	err := r.db.GetContext(ctx, &p, trainerSelect+` WHERE tp.user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &p, true, nil
}

func (r *repository) GetTrainer(ctx context.Context, id int) (*TrainerProfile, error) {
	var p TrainerProfile
	err := r.db.GetContext(ctx, &p, trainerSelect+` WHERE tp.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListTrainers(ctx context.Context) ([]TrainerProfile, error) {
	trainers := []TrainerProfile{}
	if err := r.db.SelectContext(ctx, &trainers, trainerSelect+` ORDER BY display_name ASC`); err != nil {
		return nil, err
	}

	return trainers, nil
}
