package profile

import (
	"context"
	"errors"

	"fitclub/internal/logger"
)

var (
	ErrClientNotFound  = errors.New("client profile not found")
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrTrainerExists   = errors.New("user already has a trainer profile")
	ErrUserNotFound    = errors.New("user not found")
)

type Service interface {
	FindClient(ctx context.Context, userID int) (*ClientProfile, bool, error)
	UpdateClient(ctx context.Context, userID int, req UpdateClientRequest) (*ClientProfile, error)
	AssignTrainer(ctx context.Context, clientUserID int, trainerID *int) error
	CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*TrainerProfile, error)
	FindTrainerByUser(ctx context.Context, userID int) (*TrainerProfile, bool, error)
	ListTrainers(ctx context.Context) ([]TrainerProfile, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) FindClient(ctx context.Context, userID int) (*ClientProfile, bool, error) {
	return s.repo.FindClient(ctx, userID)
}

func (s *service) UpdateClient(ctx context.Context, userID int, req UpdateClientRequest) (*ClientProfile, error) {
	return s.repo.UpdateClient(ctx, userID, req)
}

func (s *service) AssignTrainer(ctx context.Context, clientUserID int, trainerID *int) error {
	if err := s.repo.AssignTrainer(ctx, clientUserID, trainerID); err != nil {
		return err
	}

	if trainerID == nil {
		logger.Info("primary trainer cleared", "client_user_id", clientUserID)
		return nil
	}

	logger.Info("primary trainer assigned", "client_user_id", clientUserID, "trainer_id", *trainerID)
	return nil
}

func (s *service) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*TrainerProfile, error) {
	p, err := s.repo.CreateTrainer(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info("trainer profile created", "trainer_id", p.ID, "user_id", p.UserID)
	return p, nil
}

func (s *service) FindTrainerByUser(ctx context.Context, userID int) (*TrainerProfile, bool, error) {
	return s.repo.FindTrainerByUser(ctx, userID)
}

func (s *service) ListTrainers(ctx context.Context) ([]TrainerProfile, error) {
	return s.repo.ListTrainers(ctx)
}
