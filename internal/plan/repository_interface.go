package plan

import "context"

type Repository interface {
	Create(ctx context.Context, name, description string, durationType DurationType, priceCents int64, currency string, policy Policy) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	GetAll(ctx context.Context, activeOnly bool) ([]Plan, error)
	Update(ctx context.Context, p *Plan) error
}
