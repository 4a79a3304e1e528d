package registration

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fitclub/internal/event"
	"fitclub/internal/membership"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var regColumns = []string{"id", "user_id", "event_id", "status", "booked_at", "attended", "performance_notes"}

const (
	lockEventSQL    = "SELECT date, capacity, is_cancelled FROM events WHERE id = $1 FOR UPDATE"
	lockExistingSQL = "FROM registrations WHERE user_id = $1 AND event_id = $2 FOR UPDATE"
	countBookedSQL  = "SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'booked'"
	lockMemberSQL   = "ORDER BY end_date DESC LIMIT 1 FOR SHARE"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var today = day(2024, time.March, 1)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(sqlx.NewDb(sqlDB, "sqlmock")), mock
}

func expectEvent(mock sqlmock.Sqlmock, date time.Time, capacity int, cancelled bool) {
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"date", "capacity", "is_cancelled"}).AddRow(date, capacity, cancelled))
}

func expectMembership(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberSQL)).
		WithArgs(10, today).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
}

func TestJoinInsertsNewRegistration(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 10, false)
	expectMembership(mock)
	mock.ExpectQuery(regexp.QuoteMeta(lockExistingSQL)).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns))
	mock.ExpectQuery(regexp.QuoteMeta(countBookedSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations (user_id, event_id, status) VALUES ($1, $2, 'booked')")).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(1, 10, 5, "booked", time.Now(), false, ""))
	mock.ExpectCommit()

	reg, err := repo.Join(context.Background(), 10, 5, today)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.ID)
	assert.Equal(t, StatusBooked, reg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinReusesCancelledRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 10, false)
	expectMembership(mock)
	mock.ExpectQuery(regexp.QuoteMeta(lockExistingSQL)).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(7, 10, 5, "cancelled", time.Now(), false, ""))
	mock.ExpectQuery(regexp.QuoteMeta(countBookedSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE registrations SET status = 'booked', booked_at = NOW() WHERE id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(7, 10, 5, "booked", time.Now(), false, ""))
	mock.ExpectCommit()

	reg, err := repo.Join(context.Background(), 10, 5, today)
	require.NoError(t, err)
	assert.Equal(t, 7, reg.ID, "re-joining keeps the registration id")
	assert.Equal(t, StatusBooked, reg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinFullEvent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 1, false)
	expectMembership(mock)
	mock.ExpectQuery(regexp.QuoteMeta(lockExistingSQL)).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns))
	mock.ExpectQuery(regexp.QuoteMeta(countBookedSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 10, 5, today)
	assert.ErrorIs(t, err, ErrEventFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinAlreadyBooked(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 10, false)
	expectMembership(mock)
	mock.ExpectQuery(regexp.QuoteMeta(lockExistingSQL)).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(7, 10, 5, "booked", time.Now(), false, ""))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 10, 5, today)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRejectsUnavailableEvents(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		cancelled bool
		want      error
	}{
		{"cancelled", today, true, ErrEventCancelled},
		{"past", day(2024, time.February, 29), false, ErrEventPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)

			mock.ExpectBegin()
			expectEvent(mock, tt.date, 10, tt.cancelled)
			mock.ExpectRollback()

			_, err := repo.Join(context.Background(), 10, 5, today)
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestJoinMembershipLapsedBeforeLock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 10, false)
	mock.ExpectQuery(regexp.QuoteMeta(lockMemberSQL)).
		WithArgs(10, today).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 10, 5, today)
	assert.ErrorIs(t, err, membership.ErrNoMembership)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is booked")
}

func TestJoinMissingEvent(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockEventSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"date", "capacity", "is_cancelled"}))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 10, 5, today)
	assert.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestJoinUniqueViolationIsAlreadyRegistered(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	expectEvent(mock, today, 10, false)
	expectMembership(mock)
	mock.ExpectQuery(regexp.QuoteMeta(lockExistingSQL)).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns))
	mock.ExpectQuery(regexp.QuoteMeta(countBookedSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations")).
		WithArgs(10, 5).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), 10, 5, today)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRepositoryLeave(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE registrations SET status = 'cancelled'")).
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(7, 10, 5, "cancelled", time.Now(), false, ""))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE registrations SET status = 'cancelled'")).
		WithArgs(10, 6).
		WillReturnRows(sqlmock.NewRows(regColumns))

	reg, cancelled, err := repo.Leave(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, StatusCancelled, reg.Status)

	reg, cancelled, err = repo.Leave(context.Background(), 10, 6)
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Nil(t, reg)
}

func TestRepositoryMarkAttendance(t *testing.T) {
	repo, mock := newMockRepo(t)
	notes := "5k in 24:10"

	mock.ExpectQuery(regexp.QuoteMeta("SET attended = $1, performance_notes = COALESCE($2, performance_notes)")).
		WithArgs(true, notes, 7).
		WillReturnRows(sqlmock.NewRows(regColumns).AddRow(7, 10, 5, "booked", time.Now(), true, notes))

	reg, err := repo.MarkAttendance(context.Background(), 7, true, &notes)
	require.NoError(t, err)
	assert.True(t, reg.Attended)
	assert.Equal(t, notes, reg.PerformanceNotes)
}

func TestGetRegistrationNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM registrations WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(regColumns))

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
