package plan

import (
	"context"
	"errors"
)

var (
	ErrInvalidDurationType = errors.New("invalid duration type")
	ErrInvalidPolicy       = errors.New("invalid plan policy")
)

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	GetByID(ctx context.Context, id int) (*Plan, error)
	List(ctx context.Context, activeOnly bool) ([]Plan, error)
	Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	if !req.DurationType.Valid() {
		return nil, ErrInvalidDurationType
	}

	if err := validatePolicy(req.Policy); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "GTQ"
	}

	return s.repo.Create(ctx, req.Name, req.Description, req.DurationType, req.PriceCents, currency, req.Policy)
}

func (s *service) GetByID(ctx context.Context, id int) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]Plan, error) {
	return s.repo.GetAll(ctx, activeOnly)
}

func (s *service) Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Policy != nil {
		if err := validatePolicy(*req.Policy); err != nil {
			return nil, err
		}
		p.Policy = *req.Policy
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func validatePolicy(p Policy) error {
	if p.MaxSlotsPerDay < 0 || p.MaxReservationsPerWeek < 0 {
		return ErrInvalidPolicy
	}
	for _, day := range p.AllowedDays {
		if !day.Valid() {
			return ErrInvalidPolicy
		}
	}
	for day := range p.TimeRestrictions {
		if !day.Valid() {
			return ErrInvalidPolicy
		}
	}
	return nil
}
