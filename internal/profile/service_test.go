package profile

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) FindClient(ctx context.Context, userID int) (*ClientProfile, bool, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*ClientProfile)
	return p, args.Bool(1), args.Error(2)
}

func (m *MockRepository) UpdateClient(ctx context.Context, userID int, req UpdateClientRequest) (*ClientProfile, error) {
	args := m.Called(ctx, userID, req)
	p, _ := args.Get(0).(*ClientProfile)
	return p, args.Error(1)
}

func (m *MockRepository) AssignTrainer(ctx context.Context, clientUserID int, trainerID *int) error {
	return m.Called(ctx, clientUserID, trainerID).Error(0)
}

func (m *MockRepository) CreateTrainer(ctx context.Context, req CreateTrainerRequest) (*TrainerProfile, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*TrainerProfile)
	return p, args.Error(1)
}

func (m *MockRepository) FindTrainerByUser(ctx context.Context, userID int) (*TrainerProfile, bool, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*TrainerProfile)
	return p, args.Bool(1), args.Error(2)
}

func (m *MockRepository) GetTrainer(ctx context.Context, id int) (*TrainerProfile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*TrainerProfile)
	return p, args.Error(1)
}

func (m *MockRepository) ListTrainers(ctx context.Context) ([]TrainerProfile, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]TrainerProfile)
	return list, args.Error(1)
}

func TestAssignTrainerService(t *testing.T) {
	cases := []struct {
		name      string
		trainerID *int
		repoErr   error
	}{
		{"assign", lo.ToPtr(4), nil},
		{"clear", nil, nil},
		{"unknown trainer", lo.ToPtr(99), ErrTrainerNotFound},
		{"unknown client", lo.ToPtr(4), ErrClientNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("AssignTrainer", mock.Anything, 12, tc.trainerID).Return(tc.repoErr)

			err := NewService(repo).AssignTrainer(context.Background(), 12, tc.trainerID)
			if tc.repoErr != nil {
				assert.ErrorIs(t, err, tc.repoErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCreateTrainerService(t *testing.T) {
	req := CreateTrainerRequest{UserID: 3, DisplayName: "Coach Kim"}

	t.Run("created", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateTrainer", mock.Anything, req).Return(&TrainerProfile{ID: 8, UserID: 3, DisplayName: "Coach Kim"}, nil)

		p, err := NewService(repo).CreateTrainer(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 8, p.ID)
	})

	t.Run("already a trainer", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateTrainer", mock.Anything, req).Return(nil, ErrTrainerExists)

		p, err := NewService(repo).CreateTrainer(context.Background(), req)
		assert.ErrorIs(t, err, ErrTrainerExists)
		assert.Nil(t, p)
	})
}

func TestLookupsPassThrough(t *testing.T) {
	repo := new(MockRepository)
	level := LevelAdvanced
	update := UpdateClientRequest{Level: &level}

	repo.On("FindClient", mock.Anything, 1).Return(nil, false, nil)
	repo.On("UpdateClient", mock.Anything, 2, update).Return(&ClientProfile{UserID: 2, Level: LevelAdvanced}, nil)
	repo.On("FindTrainerByUser", mock.Anything, 3).Return(&TrainerProfile{ID: 8, UserID: 3}, true, nil)
	repo.On("ListTrainers", mock.Anything).Return([]TrainerProfile{{ID: 8}, {ID: 9}}, nil)

	svc := NewService(repo)
	ctx := context.Background()

	_, found, err := svc.FindClient(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	updated, err := svc.UpdateClient(ctx, 2, update)
	require.NoError(t, err)
	assert.Equal(t, LevelAdvanced, updated.Level)

	trainer, found, err := svc.FindTrainerByUser(ctx, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 8, trainer.ID)

	trainers, err := svc.ListTrainers(ctx)
	require.NoError(t, err)
	assert.Len(t, trainers, 2)

	repo.AssertExpectations(t)
}
