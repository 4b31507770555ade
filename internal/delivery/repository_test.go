package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_EnsurePendingIgnoresConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID, userID := uuid.New(), uuid.New()
	mock.ExpectExec("ON CONFLICT \\(subscription_id, delivery_date\\) DO NOTHING").
		WithArgs(subID, userID, "2025-01-10", StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).EnsurePending(context.Background(), subID, userID, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE deliveries").WillReturnRows(sqlmock.NewRows([]string{
		"id", "subscription_id", "user_id", "delivery_date", "status", "tracking_number",
		"notes", "status_updated_at", "created_at",
	}))

	_, err = NewRepository(db).UpdateStatus(context.Background(), uuid.New(), StatusDelivered, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("GROUP BY status").
		WithArgs("2025-01-10").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("delivered", 5))

	counts, err := NewRepository(db).CountByStatus(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusPending: 3, StatusDelivered: 5}, counts)
}

func TestRepository_ListBySubscriptionNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	subID, userID := uuid.New(), uuid.New()
	now := time.Now()
	columns := []string{"id", "subscription_id", "user_id", "delivery_date", "status", "tracking_number", "notes", "status_updated_at", "created_at"}

	mock.ExpectQuery("WHERE subscription_id = \\$1 ORDER BY delivery_date DESC").
		WithArgs(subID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), subID.String(), userID.String(), time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), "delivered", "TRK-9", "", now, now).
			AddRow(uuid.NewString(), subID.String(), userID.String(), time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), "delayed", "", "traffic", now, now))

	out, err := NewRepository(db).ListBySubscription(context.Background(), subID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, StatusDelivered, out[0].Status)
	assert.Equal(t, "TRK-9", out[0].TrackingNumber)
	assert.Equal(t, "traffic", out[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}
