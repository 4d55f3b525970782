package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, description string, durationType DurationType, priceCents int64, currency string, policy Policy) (*Plan, error) {
	query := `
		INSERT INTO plans (name, description, duration_type, price_cents, currency, policy, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING id, name, description, duration_type, price_cents, currency, policy, is_active, created_at, updated_at
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, name, description, durationType, priceCents, currency, policy)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	query := `
		SELECT id, name, description, duration_type, price_cents, currency, policy, is_active, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var p Plan
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetAll(ctx context.Context, activeOnly bool) ([]Plan, error) {
	query := `
		SELECT id, name, description, duration_type, price_cents, currency, policy, is_active, created_at, updated_at
		FROM plans
	`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY price_cents, id`

	var plans []Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) Update(ctx context.Context, p *Plan) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE plans
		SET name = $1, description = $2, price_cents = $3, policy = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`, p.Name, p.Description, p.PriceCents, p.Policy, p.IsActive, p.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPlanNotFound
	}

	return nil
}
