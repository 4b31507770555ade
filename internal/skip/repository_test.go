package skip

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

var recordCols = []string{
	"id", "subscription_id", "delivery_date", "reason", "meal_type",
	"compensation_applied", "compensation_days", "compensation_details", "created_at",
}

func TestRepository_InsertExtendsPeriodInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID := uuid.New()
	comp := schedule.Compensation{DaysExtended: 2, Description: "Monthly subscription extended by 2 days for skipped delivery"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(subID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO skipped_deliveries").
		WithArgs(subID, "2025-01-10", ReasonUserRequest, schedule.MealLunch, true, 2, comp.Description).
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow(
			uuid.NewString(), subID.String(), date("2025-01-10"), "user_request", "lunch",
			true, 2, comp.Description, time.Now(),
		))
	mock.ExpectCommit()

	rec, err := NewRepository(db).Insert(context.Background(), InsertParams{
		SubscriptionID: subID,
		DeliveryDate:   date("2025-01-10"),
		Reason:         ReasonUserRequest,
		MealType:       schedule.MealLunch,
		Compensation:   comp,
	})
	require.NoError(t, err)
	assert.True(t, rec.CompensationApplied)
	assert.Equal(t, 2, rec.CompensationDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subscriptions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO skipped_deliveries").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	_, err = NewRepository(db).Insert(context.Background(), InsertParams{
		SubscriptionID: subID,
		DeliveryDate:   date("2025-01-10"),
		Reason:         ReasonUserRequest,
		MealType:       schedule.MealLunch,
		Compensation:   schedule.Compensation{DaysExtended: 1},
	})
	assert.ErrorIs(t, err, ErrAlreadySkipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertFailureIsPersistenceError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subscriptions").WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err = NewRepository(db).Insert(context.Background(), InsertParams{
		SubscriptionID: uuid.New(),
		DeliveryDate:   date("2025-01-10"),
		Compensation:   schedule.Compensation{DaysExtended: 1},
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteReversesStoredDays(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM skipped_deliveries").
		WithArgs(subID, "2025-01-10").
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow(
			uuid.NewString(), subID.String(), date("2025-01-10"), "user_request", "",
			true, 3, "Monthly subscription extended by 3 days for skipped delivery", time.Now(),
		))
	mock.ExpectExec("UPDATE subscriptions").
		WithArgs(subID, -3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := NewRepository(db).Delete(context.Background(), subID, date("2025-01-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, rec.CompensationDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteMissingIsNotSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM skipped_deliveries").WillReturnRows(sqlmock.NewRows(recordCols))
	mock.ExpectRollback()

	_, err = NewRepository(db).Delete(context.Background(), uuid.New(), date("2025-01-10"))
	assert.ErrorIs(t, err, ErrNotSkipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SkippedBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID := uuid.New()
	mock.ExpectQuery("SELECT delivery_date FROM skipped_deliveries").
		WithArgs(subID, "2025-01-09", "2025-01-22").
		WillReturnRows(sqlmock.NewRows([]string{"delivery_date"}).
			AddRow(date("2025-01-10")).
			AddRow(date("2025-01-17")))

	got, err := NewRepository(db).SkippedBetween(context.Background(), subID, date("2025-01-09"), date("2025-01-22"))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2025-01-10": true, "2025-01-17": true}, got)
}
