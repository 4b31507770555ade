package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Store is the persistence contract used by the service.
type Store interface {
	Create(context.Context, CreateParams) (Subscription, error)
	GetByID(context.Context, uuid.UUID) (Subscription, error)
	ListByUser(context.Context, uuid.UUID) ([]Subscription, error)
	ListActive(context.Context) ([]Subscription, error)
	UpdateDeliveryDays(ctx context.Context, id uuid.UUID, days, vegetarian schedule.Weekdays) error
	Transition(context.Context, TransitionParams) error
	ChangePlan(context.Context, PlanChangeParams) error
	ApplyDuePlanChanges(ctx context.Context, asOf time.Time) (int64, error)
}

// Repository handles persistence for subscriptions.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectJoined = `
	SELECT s.id, s.user_id, s.meal_plan_id, p.name, p.meal_type,
		p.includes_breakfast, p.includes_lunch, p.includes_dinner, p.includes_snacks,
		s.frequency, s.status, s.price, s.current_period_start, s.current_period_end, s.end_date,
		s.delivery_days, s.vegetarian_days, s.next_meal_plan_id, s.next_price, s.meal_plan_change_date,
		s.created_at, s.updated_at
	FROM subscriptions s
	JOIN meal_plans p ON p.id = s.meal_plan_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (Subscription, error) {
	var (
		sub                             Subscription
		breakfast, lunch, dinner, snack bool
		deliveryDays, vegetarianDays    string
		nextPlanID                      uuid.NullUUID
		nextPrice                       sql.NullInt64
	)
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.MealPlanID,
		&sub.PlanName,
		&sub.MealType,
		&breakfast,
		&lunch,
		&dinner,
		&snack,
		&sub.Frequency,
		&sub.Status,
		&sub.Price,
		&sub.CurrentPeriodStart,
		&sub.CurrentPeriodEnd,
		&sub.EndDate,
		&deliveryDays,
		&vegetarianDays,
		&nextPlanID,
		&nextPrice,
		&sub.PlanChangeDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return Subscription{}, err
	}
	sub.MealsPerDay = schedule.MealsPerDay(breakfast, lunch, dinner, snack)
	sub.DeliveryDays = schedule.ParseWeekdays(deliveryDays)
	sub.VegetarianDays = schedule.ParseWeekdays(vegetarianDays)
	if nextPlanID.Valid {
		sub.NextMealPlanID = &nextPlanID.UUID
	}
	if nextPrice.Valid {
		price := int(nextPrice.Int64)
		sub.NextPrice = &price
	}
	return sub, nil
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Subscription, error) {
	const query = `
		INSERT INTO subscriptions (user_id, meal_plan_id, frequency, price,
			current_period_start, current_period_end, delivery_days, vegetarian_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id uuid.UUID
	if err := r.db.QueryRowContext(ctx, query,
		params.UserID,
		params.MealPlanID,
		params.Frequency,
		params.Price,
		params.PeriodStart,
		params.PeriodEnd,
		params.DeliveryDays.String(),
		params.VegetarianDays.String(),
	).Scan(&id); err != nil {
		return Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Subscription, error) {
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, selectJoined+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, fmt.Errorf("select subscription: %w", err)
	}
	return sub, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	return r.list(ctx, selectJoined+` WHERE s.user_id = $1 ORDER BY s.created_at DESC`, userID)
}

func (r *Repository) ListActive(ctx context.Context) ([]Subscription, error) {
	return r.list(ctx, selectJoined+` WHERE s.status = $1 ORDER BY s.created_at`, StatusActive)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Subscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func (r *Repository) UpdateDeliveryDays(ctx context.Context, id uuid.UUID, days, vegetarian schedule.Weekdays) error {
	const query = `
		UPDATE subscriptions
		SET delivery_days = $2, vegetarian_days = $3, updated_at = now()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, days.String(), vegetarian.String())
	if err != nil {
		return fmt.Errorf("update delivery days: %w", err)
	}
	return expectOneRow(result, ErrNotFound)
}

// Transition updates the status only when the current status is one of params.From,
// so concurrent pause/cancel requests cannot both win.
func (r *Repository) Transition(ctx context.Context, params TransitionParams) error {
	const query = `
		UPDATE subscriptions
		SET status = $2,
			current_period_start = COALESCE($3, current_period_start),
			current_period_end = COALESCE($4, current_period_end),
			end_date = COALESCE($5, end_date),
			updated_at = now()
		WHERE id = $1 AND status = ANY($6)`

	from := make([]string, len(params.From))
	for i, s := range params.From {
		from[i] = string(s)
	}

	result, err := r.db.ExecContext(ctx, query,
		params.ID,
		params.To,
		params.PeriodStart,
		params.PeriodEnd,
		params.EndDate,
		pq.Array(from),
	)
	if err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return expectOneRow(result, ErrInvalidTransition)
}

// ChangePlan swaps the plan and price at once, or records them as pending for the
// next billing period. An immediate change discards any pending one.
func (r *Repository) ChangePlan(ctx context.Context, params PlanChangeParams) error {
	const immediate = `
		UPDATE subscriptions
		SET meal_plan_id = $2,
			price = $3,
			next_meal_plan_id = NULL,
			next_price = NULL,
			meal_plan_change_date = NULL,
			updated_at = now()
		WHERE id = $1`

	const scheduled = `
		UPDATE subscriptions
		SET next_meal_plan_id = $2,
			next_price = $3,
			meal_plan_change_date = $4,
			updated_at = now()
		WHERE id = $1`

	var (
		result sql.Result
		err    error
	)
	if params.Immediate {
		result, err = r.db.ExecContext(ctx, immediate, params.ID, params.MealPlanID, params.Price)
	} else {
		result, err = r.db.ExecContext(ctx, scheduled, params.ID, params.MealPlanID, params.Price, params.EffectiveAt)
	}
	if err != nil {
		return fmt.Errorf("change meal plan: %w", err)
	}
	return expectOneRow(result, ErrNotFound)
}

// ApplyDuePlanChanges promotes every pending plan change whose date has been reached.
func (r *Repository) ApplyDuePlanChanges(ctx context.Context, asOf time.Time) (int64, error) {
	const query = `
		UPDATE subscriptions
		SET meal_plan_id = next_meal_plan_id,
			price = next_price,
			next_meal_plan_id = NULL,
			next_price = NULL,
			meal_plan_change_date = NULL,
			updated_at = now()
		WHERE next_meal_plan_id IS NOT NULL
			AND meal_plan_change_date <= $1`

	result, err := r.db.ExecContext(ctx, query, asOf)
	if err != nil {
		return 0, fmt.Errorf("apply plan changes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func expectOneRow(result sql.Result, notMatched error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notMatched
	}
	return nil
}
