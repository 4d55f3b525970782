package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/schedule"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, description string, durationType DurationType, priceCents int64, currency string, policy Policy) (*Plan, error) {
	args := m.Called(ctx, name, description, durationType, priceCents, currency, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockRepository) GetAll(ctx context.Context, activeOnly bool) ([]Plan, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func TestCreatePlanDefaultsCurrency(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	policy := Policy{AllowedDays: []schedule.Weekday{schedule.Monday}}

	repo.On("Create", mock.Anything, "Weekly", "", Weekly, int64(15000), "GTQ", policy).
		Return(&Plan{ID: 1, Currency: "GTQ"}, nil)

	p, err := svc.Create(context.Background(), CreatePlanRequest{
		Name:         "Weekly",
		DurationType: Weekly,
		PriceCents:   15000,
		Policy:       policy,
	})

	require.NoError(t, err)
	assert.Equal(t, "GTQ", p.Currency)
	repo.AssertExpectations(t)
}

func TestCreatePlanRejectsUnknownDuration(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreatePlanRequest{
		Name:         "Odd",
		DurationType: "fortnightly",
	})

	assert.ErrorIs(t, err, ErrInvalidDurationType)
	repo.AssertNotCalled(t, "Create")
}

func TestCreatePlanRejectsBadPolicy(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	tests := []struct {
		name   string
		policy Policy
	}{
		{"negative daily cap", Policy{MaxSlotsPerDay: -1}},
		{"negative weekly cap", Policy{MaxReservationsPerWeek: -1}},
		{"bad allowed day", Policy{AllowedDays: []schedule.Weekday{"funday"}}},
		{"bad restriction key", Policy{TimeRestrictions: map[schedule.Weekday][]int{"funday": {1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), CreatePlanRequest{
				Name:         "Bad",
				DurationType: Weekly,
				Policy:       tt.policy,
			})
			assert.ErrorIs(t, err, ErrInvalidPolicy)
		})
	}
}

func TestUpdatePlanPartialPatch(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	existing := &Plan{
		ID:           1,
		Name:         "Weekly",
		DurationType: Weekly,
		PriceCents:   15000,
		Currency:     "GTQ",
		IsActive:     true,
	}

	repo.On("GetByID", mock.Anything, 1).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	newPrice := int64(18000)
	p, err := svc.Update(context.Background(), 1, UpdatePlanRequest{PriceCents: &newPrice})

	require.NoError(t, err)
	assert.Equal(t, int64(18000), p.PriceCents)
	assert.Equal(t, "Weekly", p.Name)
	assert.Equal(t, Weekly, p.DurationType)
}

func TestUpdatePlanValidatesNewPolicy(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("GetByID", mock.Anything, 1).Return(&Plan{ID: 1, DurationType: Weekly}, nil)

	bad := Policy{MaxSlotsPerDay: -2}
	_, err := svc.Update(context.Background(), 1, UpdatePlanRequest{Policy: &bad})

	assert.ErrorIs(t, err, ErrInvalidPolicy)
	repo.AssertNotCalled(t, "Update")
}
