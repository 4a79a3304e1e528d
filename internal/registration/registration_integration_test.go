package registration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fitclub/internal/clock"
	"fitclub/internal/dbtest"
	"fitclub/internal/membership"
	"fitclub/internal/registration"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// member creates a client holding a membership that covers today.
func member(t *testing.T, database *sqlx.DB, name, email string, today time.Time) int {
	t.Helper()

	userID := dbtest.CreateClient(t, database, name, email)
	planID := dbtest.CreatePlan(t, database, "Gold "+name, "29.99", "monthly")
	dbtest.CreateMembership(t, database, userID, planID, today)
	return userID
}

func TestJoinRespectsCapacityUnderConcurrency(t *testing.T) {
	database := dbtest.Open(t)
	repo := registration.NewRepository(database)
	ctx := context.Background()

	today := clock.Date(time.Now())
	eventID := dbtest.CreateEvent(t, database, "Spin", today.AddDate(0, 0, 7), 1)

	users := []int{
		member(t, database, "Ann", "ann@example.com", today),
		member(t, database, "Bob", "bob@example.com", today),
		member(t, database, "Cat", "cat@example.com", today),
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, userID := range users {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := repo.Join(ctx, userID, eventID, today)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, registration.ErrEventFull):
				full++
			}
		}(userID)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 2, full)

	var booked int
	require.NoError(t, database.Get(&booked, `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'booked'`, eventID))
	assert.Equal(t, 1, booked)
}

func TestRejoinReusesRegistration(t *testing.T) {
	database := dbtest.Open(t)
	repo := registration.NewRepository(database)
	ctx := context.Background()

	today := clock.Date(time.Now())
	eventID := dbtest.CreateEvent(t, database, "Park run", today.AddDate(0, 0, 3), 10)
	userID := member(t, database, "Ann", "ann@example.com", today)

	first, err := repo.Join(ctx, userID, eventID, today)
	require.NoError(t, err)

	_, err = repo.Join(ctx, userID, eventID, today)
	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)

	left, changed, err := repo.Leave(ctx, userID, eventID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, registration.StatusCancelled, left.Status)

	_, changed, err = repo.Leave(ctx, userID, eventID)
	require.NoError(t, err)
	assert.False(t, changed)

	second, err := repo.Join(ctx, userID, eventID, today)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, registration.StatusBooked, second.Status)
}

func TestJoinRejectsPastEvent(t *testing.T) {
	database := dbtest.Open(t)
	repo := registration.NewRepository(database)

	today := clock.Date(time.Now())
	eventID := dbtest.CreateEvent(t, database, "Yesterday", today.AddDate(0, 0, -1), 10)
	userID := member(t, database, "Ann", "ann@example.com", today)

	_, err := repo.Join(context.Background(), userID, eventID, today)
	assert.ErrorIs(t, err, registration.ErrEventPast)
}

func TestJoinRejectsCancelledMembership(t *testing.T) {
	database := dbtest.Open(t)
	repo := registration.NewRepository(database)
	ctx := context.Background()

	today := clock.Date(time.Now())
	eventID := dbtest.CreateEvent(t, database, "Spin", today.AddDate(0, 0, 2), 10)
	userID := dbtest.CreateClient(t, database, "Ann", "ann@example.com")
	planID := dbtest.CreatePlan(t, database, "Gold", "29.99", "monthly")
	membershipID := dbtest.CreateMembership(t, database, userID, planID, today)

	_, err := membership.NewRepository(database).Cancel(ctx, membershipID)
	require.NoError(t, err)

	_, err = repo.Join(ctx, userID, eventID, today)
	assert.ErrorIs(t, err, membership.ErrNoMembership)

	var rows int
	require.NoError(t, database.Get(&rows, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID))
	assert.Zero(t, rows)
}
