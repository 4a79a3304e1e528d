package plan

import (
	"context"
	"errors"
	"strings"

	"fitclub/internal/logger"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrPlanInactive    = errors.New("plan is not active")
	ErrInvalidPrice    = errors.New("price must be greater than zero")
	ErrInvalidInterval = errors.New("billing interval must be monthly or yearly")
	ErrTrainerNotFound = errors.New("trainer not found")
)

type Service interface {
	ListActive(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id int) (*Plan, error)
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type service struct {
	repo     Repository
	currency string
}

func NewService(repo Repository, defaultCurrency string) Service {
	return &service{
		repo:     repo,
		currency: strings.ToLower(defaultCurrency),
	}
}

func (s *service) ListActive(ctx context.Context) ([]Plan, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	if !req.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if !req.BillingInterval.Valid() {
		return nil, ErrInvalidInterval
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.currency
	}

	p, err := s.repo.Create(ctx, &Plan{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           req.Price.Round(2),
		Currency:        currency,
		BillingInterval: req.BillingInterval,
		DurationDays:    req.DurationDays,
		TrainerID:       req.TrainerID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("plan created", "plan_id", p.ID, "price", p.Price.StringFixed(2), "interval", p.BillingInterval)
	return p, nil
}

func (s *service) SetActive(ctx context.Context, id int, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}
