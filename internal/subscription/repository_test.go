package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

var joinedColumns = []string{
	"id", "user_id", "meal_plan_id", "name", "meal_type",
	"includes_breakfast", "includes_lunch", "includes_dinner", "includes_snacks",
	"frequency", "status", "price", "current_period_start", "current_period_end", "end_date",
	"delivery_days", "vegetarian_days", "next_meal_plan_id", "next_price", "meal_plan_change_date",
	"created_at", "updated_at",
}

func TestRepository_GetByIDJoinsPlan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id, userID, planID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()
	end := now.AddDate(0, 0, 7)

	mock.ExpectQuery("FROM subscriptions s").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(joinedColumns).AddRow(
			id.String(), userID.String(), planID.String(), "Full Day", "all_day",
			true, true, true, false,
			"weekly", "active", 4500, now, end, nil,
			"0,2,4", "4", nil, nil, nil,
			now, now,
		))

	sub, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, userID, sub.UserID)
	assert.Equal(t, schedule.MealAllDay, sub.MealType)
	assert.Equal(t, 3, sub.MealsPerDay)
	assert.Equal(t, schedule.Weekdays{0, 2, 4}, sub.DeliveryDays)
	assert.Equal(t, schedule.Weekdays{4}, sub.VegetarianDays)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Nil(t, sub.EndDate)
	assert.Nil(t, sub.NextMealPlanID)
	assert.Nil(t, sub.NextPrice)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM subscriptions s").WillReturnRows(sqlmock.NewRows(joinedColumns))

	_, err = NewRepository(db).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_TransitionGuardsCurrentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(id, StatusPaused, nil, nil, nil, pq.Array([]string{"active"})).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Transition(context.Background(), TransitionParams{
		ID:   id,
		From: []Status{StatusActive},
		To:   StatusPaused,
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateDeliveryDaysStoresIndexString(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(id, "0,1,2", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRepository(db).UpdateDeliveryDays(context.Background(), id, schedule.Weekdays{0, 1, 2}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByIDScansPendingPlanChange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, nextPlan := uuid.New(), uuid.New()
	now := time.Now()
	end := now.AddDate(0, 0, 7)

	mock.ExpectQuery("FROM subscriptions s").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(joinedColumns).AddRow(
			id.String(), uuid.NewString(), uuid.NewString(), "Lunch Only", "lunch",
			false, true, false, false,
			"weekly", "active", 2500, now, end, nil,
			"0,1,2,3,4", "", nextPlan.String(), 4500, end,
			now, now,
		))

	sub, err := NewRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)

	require.NotNil(t, sub.NextMealPlanID)
	assert.Equal(t, nextPlan, *sub.NextMealPlanID)
	require.NotNil(t, sub.NextPrice)
	assert.Equal(t, 4500, *sub.NextPrice)
	require.NotNil(t, sub.PlanChangeDate)
	assert.True(t, end.Equal(*sub.PlanChangeDate))
}

func TestRepository_ChangePlanScheduledKeepsCurrentPlan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id, planID := uuid.New(), uuid.New()
	at := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("SET next_meal_plan_id = \\$2").
		WithArgs(id, planID, 4500, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRepository(db).ChangePlan(context.Background(), PlanChangeParams{ID: id, MealPlanID: planID, Price: 4500, EffectiveAt: &at})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ChangePlanImmediateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("SET meal_plan_id = \\$2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).ChangePlan(context.Background(), PlanChangeParams{ID: uuid.New(), MealPlanID: uuid.New(), Immediate: true})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ApplyDuePlanChanges(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	asOf := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("SET meal_plan_id = next_meal_plan_id").
		WithArgs(asOf).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewRepository(db).ApplyDuePlanChanges(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
