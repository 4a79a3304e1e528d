package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/clock"
	"fitclub/internal/logger"
	"fitclub/internal/profile"

	"github.com/samber/lo"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrTrainerNotFound  = errors.New("trainer not found")
	ErrNoTrainerProfile = errors.New("caller has no trainer profile")
	ErrNotEventOwner    = errors.New("event belongs to another trainer")
	ErrInvalidType      = errors.New("event type must be running_club, class or challenge")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD and not in the past")
	ErrInvalidTime      = errors.New("times must be HH:MM")
	ErrInvalidTimes     = errors.New("end time must be after start time")
	ErrInvalidCapacity  = errors.New("capacity must be greater than zero")
)

type ProfileSource interface {
	FindClient(ctx context.Context, userID int) (*profile.ClientProfile, bool, error)
	FindTrainerByUser(ctx context.Context, userID int) (*profile.TrainerProfile, bool, error)
}

type Service interface {
	ListVisible(ctx context.Context, userID int, f Filter) ([]EventWithAvailability, error)
	Get(ctx context.Context, userID, id int) (*EventWithAvailability, error)
	Create(ctx context.Context, p auth.Principal, req CreateEventRequest) (*Event, error)
	Cancel(ctx context.Context, p auth.Principal, id int) error
	AuthorizeManage(ctx context.Context, p auth.Principal, id int) (*EventWithAvailability, error)
}

type service struct {
	repo     Repository
	profiles ProfileSource
	clock    *clock.Clock
}

func NewService(repo Repository, profiles ProfileSource, clk *clock.Clock) Service {
	return &service{repo: repo, profiles: profiles, clock: clk}
}

// ListVisible returns upcoming events. Clients with a primary trainer only
// see that trainer's events.
func (s *service) ListVisible(ctx context.Context, userID int, f Filter) ([]EventWithAvailability, error) {
	f.TrainerID = nil

	client, found, err := s.profiles.FindClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client profile: %w", err)
	}
	if found && client.PrimaryTrainerID != nil {
		f.TrainerID = client.PrimaryTrainerID
	}

	today := s.clock.Today()
	events, err := s.repo.ListVisible(ctx, userID, today, f)
	if err != nil {
		return nil, err
	}

	return lo.Map(events, func(e EventWithAvailability, _ int) EventWithAvailability {
		e.applyAvailability(today)
		return e
	}), nil
}

func (s *service) Get(ctx context.Context, userID, id int) (*EventWithAvailability, error) {
	e, err := s.repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	e.applyAvailability(s.clock.Today())
	return e, nil
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateEventRequest) (*Event, error) {
	e, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}

	if p.IsStaff() {
		e.TrainerID = req.TrainerID
	} else {
		trainer, found, err := s.profiles.FindTrainerByUser(ctx, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load trainer profile: %w", err)
		}
		if !found {
			return nil, ErrNoTrainerProfile
		}
		e.TrainerID = &trainer.ID
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}

	logger.Info("event created", "event_id", created.ID, "type", created.EventType, "created_by", p.UserID)
	return created, nil
}

func (s *service) buildEvent(req CreateEventRequest) (*Event, error) {
	if !req.EventType.Valid() {
		return nil, ErrInvalidType
	}
	if req.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	date, err := time.Parse(DateLayout, req.Date)
	if err != nil || date.Before(s.clock.Today()) {
		return nil, ErrInvalidDate
	}

	start, err := time.Parse(TimeLayout, req.StartTime)
	if err != nil {
		return nil, ErrInvalidTime
	}
	if req.EndTime != nil {
		end, err := time.Parse(TimeLayout, *req.EndTime)
		if err != nil {
			return nil, ErrInvalidTime
		}
		if !end.After(start) {
			return nil, ErrInvalidTimes
		}
	}

	return &Event{
		Title:          req.Title,
		Description:    req.Description,
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Location:       req.Location,
		EventType:      req.EventType,
		Capacity:       req.Capacity,
		DistanceKm:     req.DistanceKm,
		TargetReps:     req.TargetReps,
		PriceMember:    req.PriceMember,
		PriceNonMember: req.PriceNonMember,
	}, nil
}

// AuthorizeManage loads the event and checks that the caller may change it:
// staff always, trainers only for events they own.
func (s *service) AuthorizeManage(ctx context.Context, p auth.Principal, id int) (*EventWithAvailability, error) {
	e, err := s.repo.Get(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	e.applyAvailability(s.clock.Today())

	if p.IsStaff() {
		return e, nil
	}

	trainer, found, err := s.profiles.FindTrainerByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trainer profile: %w", err)
	}
	if !found || e.TrainerID == nil || *e.TrainerID != trainer.ID {
		return nil, ErrNotEventOwner
	}

	return e, nil
}

func (s *service) Cancel(ctx context.Context, p auth.Principal, id int) error {
	e, err := s.AuthorizeManage(ctx, p, id)
	if err != nil {
		return err
	}
	if e.IsCancelled {
		return nil
	}

	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}

	logger.Info("event cancelled", "event_id", id, "cancelled_by", p.UserID, "booked", e.RegistrationsCount)
	return nil
}
