package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/event"
	"fitclub/internal/membership"
	"fitclub/internal/profile"
	"fitclub/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Join(ctx context.Context, userID, eventID int, today time.Time) (*Registration, error) {
	args := m.Called(ctx, userID, eventID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Registration), args.Error(1)
}

func (m *MockRepository) Leave(ctx context.Context, userID, eventID int) (*Registration, bool, error) {
	args := m.Called(ctx, userID, eventID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Registration), args.Bool(1), args.Error(2)
}

func (m *MockRepository) Get(ctx context.Context, id int) (*Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Registration), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int) ([]RegistrationWithEvent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RegistrationWithEvent), args.Error(1)
}

func (m *MockRepository) ListForEvent(ctx context.Context, eventID int) ([]Attendee, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Attendee), args.Error(1)
}

func (m *MockRepository) MarkAttendance(ctx context.Context, id int, attended bool, notes *string) (*Registration, error) {
	args := m.Called(ctx, id, attended, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Registration), args.Error(1)
}

type MockProfiles struct{ mock.Mock }

func (m *MockProfiles) FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*profile.ClientProfile), args.Bool(1), args.Error(2)
}

type MockMemberships struct{ mock.Mock }

func (m *MockMemberships) IsActive(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockEvents struct{ mock.Mock }

func (m *MockEvents) Get(ctx context.Context, userID, id int) (*event.EventWithAvailability, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.EventWithAvailability), args.Error(1)
}

func (m *MockEvents) AuthorizeManage(ctx context.Context, p auth.Principal, id int) (*event.EventWithAvailability, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.EventWithAvailability), args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendEventJoined(ctx context.Context, to, name, eventTitle, location string, when time.Time) error {
	return m.Called(ctx, to, name, eventTitle, location, when).Error(0)
}

func (m *MockNotifier) SendEventLeft(ctx context.Context, to, name, eventTitle string) error {
	return m.Called(ctx, to, name, eventTitle).Error(0)
}

type fixture struct {
	repo        *MockRepository
	profiles    *MockProfiles
	memberships *MockMemberships
	events      *MockEvents
	users       *MockUsers
	notifier    *MockNotifier
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:        new(MockRepository),
		profiles:    new(MockProfiles),
		memberships: new(MockMemberships),
		events:      new(MockEvents),
		users:       new(MockUsers),
		notifier:    new(MockNotifier),
	}
	f.svc = NewService(f.repo, f.profiles, f.memberships, f.events, f.users, f.notifier, clock.Fixed(today))
	return f
}

func (f *fixture) eligible(ctx context.Context) {
	f.profiles.On("FindClient", ctx, 10).Return(&profile.ClientProfile{UserID: 10}, true, nil)
	f.memberships.On("IsActive", ctx, 10).Return(true, nil)
}

func parkRun() *event.EventWithAvailability {
	return &event.EventWithAvailability{Event: event.Event{
		ID:        5,
		Title:     "Park run",
		Location:  "Hyde Park",
		Date:      day(2024, time.March, 2),
		StartTime: "07:30",
	}}
}

func TestJoin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.eligible(ctx)

	f.repo.On("Join", ctx, 10, 5, today).Return(&Registration{ID: 1, UserID: 10, EventID: 5, Status: StatusBooked}, nil)
	f.users.On("FindByID", ctx, 10).Return(&user.User{ID: 10, Email: "a@example.com", Name: "Alice"}, nil)
	f.events.On("Get", ctx, 10, 5).Return(parkRun(), nil)
	f.notifier.On("SendEventJoined", ctx, "a@example.com", "Alice", "Park run", "Hyde Park",
		time.Date(2024, time.March, 2, 7, 30, 0, 0, time.UTC)).Return(nil)

	reg, err := f.svc.Join(ctx, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.ID)
	f.notifier.AssertExpectations(t)
}

func TestJoinRequiresClientProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.profiles.On("FindClient", ctx, 10).Return(nil, false, nil)

	_, err := f.svc.Join(ctx, 10, 5)
	assert.ErrorIs(t, err, membership.ErrNotEligible)
	f.repo.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinRequiresActiveMembership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.profiles.On("FindClient", ctx, 10).Return(&profile.ClientProfile{UserID: 10}, true, nil)
	f.memberships.On("IsActive", ctx, 10).Return(false, nil)

	_, err := f.svc.Join(ctx, 10, 5)
	assert.ErrorIs(t, err, membership.ErrNoMembership)
	f.repo.AssertNotCalled(t, "Join", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinFullEventSendsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.eligible(ctx)

	f.repo.On("Join", ctx, 10, 5, today).Return(nil, ErrEventFull)

	_, err := f.svc.Join(ctx, 10, 5)
	assert.ErrorIs(t, err, ErrEventFull)
	f.notifier.AssertNotCalled(t, "SendEventJoined", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "full", resultLabel(ErrEventFull))
	assert.Equal(t, "duplicate", resultLabel(ErrAlreadyRegistered))
	assert.Equal(t, "no_membership", resultLabel(membership.ErrNoMembership))
	assert.Equal(t, "not_eligible", resultLabel(membership.ErrTrainerMismatch))
	assert.Equal(t, "error", resultLabel(errors.New("boom")))
}

func TestLeave(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("Leave", ctx, 10, 5).Return(&Registration{ID: 1, Status: StatusCancelled}, true, nil)
	f.users.On("FindByID", ctx, 10).Return(&user.User{ID: 10, Email: "a@example.com", Name: "Alice"}, nil)
	f.events.On("Get", ctx, 10, 5).Return(parkRun(), nil)
	f.notifier.On("SendEventLeft", ctx, "a@example.com", "Alice", "Park run").Return(nil)

	cancelled, err := f.svc.Leave(ctx, 10, 5)
	require.NoError(t, err)
	assert.True(t, cancelled)
	f.notifier.AssertExpectations(t)
}

func TestLeaveWithoutBookingIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("Leave", ctx, 10, 5).Return(nil, false, nil)

	cancelled, err := f.svc.Leave(ctx, 10, 5)
	require.NoError(t, err)
	assert.False(t, cancelled)
	f.notifier.AssertNotCalled(t, "SendEventLeft", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAttendanceChecksOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainer := auth.Principal{UserID: 20, Role: auth.RoleTrainer}
	attended := true

	f.repo.On("Get", ctx, 7).Return(&Registration{ID: 7, EventID: 5}, nil)
	f.events.On("AuthorizeManage", ctx, trainer, 5).Return(nil, event.ErrNotEventOwner)

	_, err := f.svc.MarkAttendance(ctx, trainer, 7, AttendanceRequest{Attended: &attended})
	assert.ErrorIs(t, err, event.ErrNotEventOwner)
	f.repo.AssertNotCalled(t, "MarkAttendance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkAttendance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	trainer := auth.Principal{UserID: 20, Role: auth.RoleTrainer}
	attended := true
	notes := "great pace"

	f.repo.On("Get", ctx, 7).Return(&Registration{ID: 7, EventID: 5}, nil)
	f.events.On("AuthorizeManage", ctx, trainer, 5).Return(parkRun(), nil)
	f.repo.On("MarkAttendance", ctx, 7, true, &notes).Return(&Registration{ID: 7, Attended: true, PerformanceNotes: notes}, nil)

	reg, err := f.svc.MarkAttendance(ctx, trainer, 7, AttendanceRequest{Attended: &attended, PerformanceNotes: &notes})
	require.NoError(t, err)
	assert.True(t, reg.Attended)
}

func TestListForEventRequiresManagement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := auth.Principal{UserID: 1, Role: auth.RoleAdmin}

	f.events.On("AuthorizeManage", ctx, admin, 5).Return(parkRun(), nil)
	f.repo.On("ListForEvent", ctx, 5).Return([]Attendee{{UserName: "Alice"}}, nil)

	attendees, err := f.svc.ListForEvent(ctx, admin, 5)
	require.NoError(t, err)
	assert.Len(t, attendees, 1)
}
