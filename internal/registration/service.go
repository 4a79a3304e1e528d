package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/event"
	"fitclub/internal/logger"
	"fitclub/internal/membership"
	"fitclub/internal/metrics"
	"fitclub/internal/profile"
	"fitclub/internal/user"
)

var (
	ErrEventCancelled       = errors.New("event has been cancelled")
	ErrEventPast            = errors.New("event has already taken place")
	ErrEventFull            = errors.New("event is full")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrRegistrationNotFound = errors.New("registration not found")
)

type ProfileSource interface {
	FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error)
}

type MembershipChecker interface {
	IsActive(ctx context.Context, userID int) (bool, error)
}

type EventSource interface {
	Get(ctx context.Context, userID, id int) (*event.EventWithAvailability, error)
	AuthorizeManage(ctx context.Context, p auth.Principal, id int) (*event.EventWithAvailability, error)
}

type UserSource interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type Notifier interface {
	SendEventJoined(ctx context.Context, to, name, eventTitle, location string, when time.Time) error
	SendEventLeft(ctx context.Context, to, name, eventTitle string) error
}

type Service interface {
	Join(ctx context.Context, userID, eventID int) (*Registration, error)
	Leave(ctx context.Context, userID, eventID int) (bool, error)
	ListMine(ctx context.Context, userID int) ([]RegistrationWithEvent, error)
	ListForEvent(ctx context.Context, p auth.Principal, eventID int) ([]Attendee, error)
	MarkAttendance(ctx context.Context, p auth.Principal, registrationID int, req AttendanceRequest) (*Registration, error)
}

type service struct {
	repo        Repository
	profiles    ProfileSource
	memberships MembershipChecker
	events      EventSource
	users       UserSource
	notifier    Notifier
	clock       *clock.Clock
}

func NewService(
	repo Repository,
	profiles ProfileSource,
	memberships MembershipChecker,
	events EventSource,
	users UserSource,
	notifier Notifier,
	clk *clock.Clock,
) Service {
	return &service{
		repo:        repo,
		profiles:    profiles,
		memberships: memberships,
		events:      events,
		users:       users,
		notifier:    notifier,
		clock:       clk,
	}
}

func (s *service) Join(ctx context.Context, userID, eventID int) (*Registration, error) {
	reg, err := s.join(ctx, userID, eventID)
	if err != nil {
		metrics.RecordRegistration("join", resultLabel(err))
		return nil, err
	}

	metrics.RecordRegistration("join", "success")
	logger.Info("event joined", "registration_id", reg.ID, "event_id", eventID, "user_id", userID)
	s.notifyJoined(ctx, userID, eventID)

	return reg, nil
}

func (s *service) join(ctx context.Context, userID, eventID int) (*Registration, error) {
	_, found, err := s.profiles.FindClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}
	if !found {
		return nil, membership.ErrNotEligible
	}

	// Early rejection before taking the event lock. Join rechecks inside its
	// transaction.
	active, err := s.memberships.IsActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !active {
		return nil, membership.ErrNoMembership
	}

	return s.repo.Join(ctx, userID, eventID, s.clock.Today())
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, membership.ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, membership.ErrNoMembership):
		return "no_membership"
	case errors.Is(err, event.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, ErrEventCancelled):
		return "cancelled"
	case errors.Is(err, ErrEventPast):
		return "past"
	case errors.Is(err, ErrEventFull):
		return "full"
	case errors.Is(err, ErrAlreadyRegistered):
		return "duplicate"
	}
	return "error"
}

// Leave cancels the caller's booking if there is one. Leaving an event the
// caller never joined is not an error.
func (s *service) Leave(ctx context.Context, userID, eventID int) (bool, error) {
	reg, cancelled, err := s.repo.Leave(ctx, userID, eventID)
	if err != nil {
		metrics.RecordRegistration("leave", "error")
		return false, err
	}
	if !cancelled {
		metrics.RecordRegistration("leave", "noop")
		return false, nil
	}

	metrics.RecordRegistration("leave", "success")
	logger.Info("event left", "registration_id", reg.ID, "event_id", eventID, "user_id", userID)
	s.notifyLeft(ctx, userID, eventID)

	return true, nil
}

func (s *service) ListMine(ctx context.Context, userID int) ([]RegistrationWithEvent, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListForEvent(ctx context.Context, p auth.Principal, eventID int) ([]Attendee, error) {
	if _, err := s.events.AuthorizeManage(ctx, p, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListForEvent(ctx, eventID)
}

func (s *service) MarkAttendance(ctx context.Context, p auth.Principal, registrationID int, req AttendanceRequest) (*Registration, error) {
	reg, err := s.repo.Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	if _, err := s.events.AuthorizeManage(ctx, p, reg.EventID); err != nil {
		return nil, err
	}

	attended := req.Attended != nil && *req.Attended
	updated, err := s.repo.MarkAttendance(ctx, registrationID, attended, req.PerformanceNotes)
	if err != nil {
		return nil, err
	}

	logger.Info("attendance recorded", "registration_id", registrationID, "attended", attended, "by", p.UserID)
	return updated, nil
}

func (s *service) notifyJoined(ctx context.Context, userID, eventID int) {
	u, e, ok := s.notificationTarget(ctx, userID, eventID)
	if !ok {
		return
	}

	if err := s.notifier.SendEventJoined(ctx, u.Email, u.Name, e.Title, e.Location, e.StartsAt()); err != nil {
		logger.WithError(err).Warn("failed to queue booking email", "user_id", userID, "event_id", eventID)
	}
}

func (s *service) notifyLeft(ctx context.Context, userID, eventID int) {
	u, e, ok := s.notificationTarget(ctx, userID, eventID)
	if !ok {
		return
	}

	if err := s.notifier.SendEventLeft(ctx, u.Email, u.Name, e.Title); err != nil {
		logger.WithError(err).Warn("failed to queue cancellation email", "user_id", userID, "event_id", eventID)
	}
}

func (s *service) notificationTarget(ctx context.Context, userID, eventID int) (*user.User, *event.EventWithAvailability, bool) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.WithError(err).Warn("registration email skipped", "user_id", userID)
		return nil, nil, false
	}

	e, err := s.events.Get(ctx, userID, eventID)
	if err != nil {
		logger.WithError(err).Warn("registration email skipped", "event_id", eventID)
		return nil, nil, false
	}

	return u, e, true
}
