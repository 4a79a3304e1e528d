// Package dbtest opens the Postgres database used by integration tests.
// Tests are skipped unless TEST_DSN is set.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// lockKey serializes integration tests from different packages, which
// `go test ./...` runs in parallel against the same database.
const lockKey = 727274

const tables = `stripe_webhook_events, payments, registrations, events,
	memberships, plans, client_profiles, trainer_profiles, users`

func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("TEST_DSN not set, skipping integration test")
	}

	database, err := db.Connect(dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	conn, err := database.Connx(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Close()
	})

	require.NoError(t, db.RunMigrations(database, migrationsPath()))

	_, err = database.Exec(`TRUNCATE ` + tables + ` RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return database
}

func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

func CreateUser(t testing.TB, database *sqlx.DB, name, email, role string) int {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	var id int
	err = database.QueryRow(
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		name, email, hash, role,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

// CreateClient inserts a member together with their client profile.
func CreateClient(t testing.TB, database *sqlx.DB, name, email string) int {
	t.Helper()

	id := CreateUser(t, database, name, email, auth.RoleMember)
	_, err := database.Exec(`INSERT INTO client_profiles (user_id) VALUES ($1)`, id)
	require.NoError(t, err)

	return id
}

func CreatePlan(t testing.TB, database *sqlx.DB, name, price, interval string) int {
	t.Helper()

	var id int
	err := database.QueryRow(
		`INSERT INTO plans (name, price, billing_interval) VALUES ($1, $2, $3) RETURNING id`,
		name, price, interval,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

// CreateMembership gives userID an active membership covering today.
func CreateMembership(t testing.TB, database *sqlx.DB, userID, planID int, today time.Time) int {
	t.Helper()

	var id int
	err := database.QueryRow(
		`INSERT INTO memberships (user_id, plan_id, start_date, end_date, status)
		 VALUES ($1, $2, $3, $4, 'active') RETURNING id`,
		userID, planID, today, today.AddDate(0, 0, 30),
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func CreateEvent(t testing.TB, database *sqlx.DB, title string, date time.Time, capacity int) int {
	t.Helper()

	var id int
	err := database.QueryRow(
		`INSERT INTO events (title, date, start_time, location, event_type, capacity)
		 VALUES ($1, $2, '18:00', 'Main hall', 'class', $3) RETURNING id`,
		title, date, capacity,
	).Scan(&id)
	require.NoError(t, err)

	return id
}
