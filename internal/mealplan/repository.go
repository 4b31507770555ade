package mealplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a meal plan does not exist.
var ErrNotFound = errors.New("meal plan not found")

// Store is the persistence contract used by the handler.
type Store interface {
	Create(context.Context, CreateParams) (MealPlan, error)
	GetByID(context.Context, uuid.UUID) (MealPlan, error)
	ListActive(context.Context) ([]MealPlan, error)
}

// Repository handles persistence for meal plans.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, price_weekly, price_monthly, includes_breakfast, includes_lunch,
		includes_dinner, includes_snacks, meal_type, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (MealPlan, error) {
	var p MealPlan
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.PriceWeekly,
		&p.PriceMonthly,
		&p.IncludesBreakfast,
		&p.IncludesLunch,
		&p.IncludesDinner,
		&p.IncludesSnacks,
		&p.MealType,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (MealPlan, error) {
	query := `
		INSERT INTO meal_plans (name, price_weekly, price_monthly, includes_breakfast, includes_lunch,
			includes_dinner, includes_snacks, meal_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + selectColumns

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query,
		params.Name,
		params.PriceWeekly,
		params.PriceMonthly,
		params.IncludesBreakfast,
		params.IncludesLunch,
		params.IncludesDinner,
		params.IncludesSnacks,
		params.MealType(),
	))
	if err != nil {
		return MealPlan{}, fmt.Errorf("insert meal plan: %w", err)
	}
	return plan, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (MealPlan, error) {
	query := `SELECT ` + selectColumns + ` FROM meal_plans WHERE id = $1`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MealPlan{}, ErrNotFound
		}
		return MealPlan{}, fmt.Errorf("select meal plan: %w", err)
	}
	return plan, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]MealPlan, error) {
	query := `SELECT ` + selectColumns + ` FROM meal_plans WHERE is_active ORDER BY price_weekly, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal plans: %w", err)
	}
	return plans, nil
}
