package dashboard

import (
	"context"
	"errors"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/event"
	"fitclub/internal/membership"
	"fitclub/internal/profile"
	"fitclub/internal/registration"

	"golang.org/x/sync/errgroup"
)

var ErrNoClientProfile = errors.New("you need a client profile")

type ProfileSource interface {
	FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error)
	FindTrainerByUser(ctx context.Context, userID int) (*profile.TrainerProfile, bool, error)
}

type MembershipSource interface {
	ActiveFor(ctx context.Context, userID int) (*membership.MembershipView, bool, error)
}

type EventSource interface {
	ListVisible(ctx context.Context, userID int, f event.Filter) ([]event.EventWithAvailability, error)
}

type RegistrationSource interface {
	ListMine(ctx context.Context, userID int) ([]registration.RegistrationWithEvent, error)
}

type Service interface {
	Client(ctx context.Context, userID int) (*ClientDashboard, error)
	Trainer(ctx context.Context, p auth.Principal) (*TrainerDashboard, error)
	Admin(ctx context.Context) (*AdminDashboard, error)
}

type service struct {
	repo          Repository
	profiles      ProfileSource
	memberships   MembershipSource
	events        EventSource
	registrations RegistrationSource
	clock         *clock.Clock
}

func NewService(
	repo Repository,
	profiles ProfileSource,
	memberships MembershipSource,
	events EventSource,
	registrations RegistrationSource,
	clk *clock.Clock,
) Service {
	return &service{
		repo:          repo,
		profiles:      profiles,
		memberships:   memberships,
		events:        events,
		registrations: registrations,
		clock:         clk,
	}
}

// Client gathers the caller's membership, the next events on their
// trainer's calendar and their own registrations.
func (s *service) Client(ctx context.Context, userID int) (*ClientDashboard, error) {
	_, found, err := s.profiles.FindClient(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoClientProfile
	}

	var d ClientDashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		view, ok, err := s.memberships.ActiveFor(gctx, userID)
		if err != nil {
			return err
		}
		if ok {
			d.Membership = view
		}
		return nil
	})
	g.Go(func() error {
		events, err := s.events.ListVisible(gctx, userID, event.Filter{})
		if err != nil {
			return err
		}
		if len(events) > upcomingListLimit {
			events = events[:upcomingListLimit]
		}
		d.UpcomingEvents = events
		return nil
	})
	g.Go(func() error {
		regs, err := s.registrations.ListMine(gctx, userID)
		if err != nil {
			return err
		}
		d.MyRegistrations = regs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Trainer reports on the caller's own clients, events and plan sales. Staff
// without a trainer profile see the unassigned ones.
func (s *service) Trainer(ctx context.Context, p auth.Principal) (*TrainerDashboard, error) {
	var trainerID *int

	trainer, found, err := s.profiles.FindTrainerByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	switch {
	case found:
		trainerID = &trainer.ID
	case !p.IsStaff():
		return nil, event.ErrNoTrainerProfile
	}

	today := s.clock.Today()

	counts, err := s.repo.TrainerCounts(ctx, trainerID, today)
	if err != nil {
		return nil, err
	}

	clients, err := s.repo.TrainerClients(ctx, trainerID, clientListLimit)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.TrainerEvents(ctx, trainerID, today, upcomingListLimit)
	if err != nil {
		return nil, err
	}

	return &TrainerDashboard{TrainerCounts: *counts, Clients: clients, Events: events}, nil
}

func (s *service) Admin(ctx context.Context) (*AdminDashboard, error) {
	return s.repo.AdminCounts(ctx, s.clock.Today())
}
