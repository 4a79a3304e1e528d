package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plan) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	ListActive(ctx context.Context) ([]Plan, error)
	SetActive(ctx context.Context, id int, active bool) error
}
