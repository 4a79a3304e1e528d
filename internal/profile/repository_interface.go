package profile

import "context"

type Repository interface {
	FindClient(ctx context.Context, userID int) (*ClientProfile, bool, error)
	UpdateClient(ctx context.Context, userID int, req UpdateClientRequest) (*ClientProfile, error)
	AssignTrainer(ctx context.Context, clientUserID int, trainerID *int) error
	CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*TrainerProfile, error)
	FindTrainerByUser(ctx context.Context, userID int) (*TrainerProfile, bool, error)
	GetTrainer(ctx context.Context, id int) (*TrainerProfile, error)
	ListTrainers(ctx context.Context) ([]TrainerProfile, error)
}
