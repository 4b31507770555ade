package skip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/db"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Store is the persistence contract of the skip ledger.
type Store interface {
	// Insert records the skip and extends the billing period in one transaction.
	Insert(context.Context, InsertParams) (Record, error)
	// Delete removes the skip and reverses its extension in one transaction.
	Delete(ctx context.Context, subscriptionID uuid.UUID, date time.Time) (Record, error)
	ListBySubscription(context.Context, uuid.UUID) ([]Record, error)
	SkippedBetween(ctx context.Context, subscriptionID uuid.UUID, from, to time.Time) (map[string]bool, error)
}

// Repository is the PostgreSQL Store.
type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

const recordColumns = `id, subscription_id, delivery_date, reason, COALESCE(meal_type, ''),
	compensation_applied, compensation_days, compensation_details, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.SubscriptionID,
		&rec.DeliveryDate,
		&rec.Reason,
		&rec.MealType,
		&rec.CompensationApplied,
		&rec.CompensationDays,
		&rec.CompensationDetails,
		&rec.CreatedAt,
	)
	return rec, err
}

func dateArg(t time.Time) string {
	return t.Format(schedule.DateLayout)
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) (Record, error) {
	var rec Record
	err := db.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		applied, err := shiftPeriodEnd(ctx, tx, p.SubscriptionID, p.Compensation.DaysExtended)
		if err != nil {
			return err
		}

		days, details := 0, "No billing period to extend"
		if applied {
			days, details = p.Compensation.DaysExtended, p.Compensation.Description
		}

		query := `
			INSERT INTO skipped_deliveries (subscription_id, delivery_date, reason, meal_type,
				compensation_applied, compensation_days, compensation_details)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING ` + recordColumns

		rec, err = scanRecord(tx.QueryRowContext(ctx, query,
			p.SubscriptionID,
			dateArg(p.DeliveryDate),
			p.Reason,
			p.MealType,
			applied,
			days,
			details,
		))
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrAlreadySkipped
			}
			return persistence("insert skip", err)
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *Repository) Delete(ctx context.Context, subscriptionID uuid.UUID, date time.Time) (Record, error) {
	var rec Record
	err := db.WithinTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			DELETE FROM skipped_deliveries
			WHERE subscription_id = $1 AND delivery_date = $2
			RETURNING ` + recordColumns

		var err error
		rec, err = scanRecord(tx.QueryRowContext(ctx, query, subscriptionID, dateArg(date)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotSkipped
			}
			return persistence("delete skip", err)
		}

		if rec.CompensationApplied && rec.CompensationDays > 0 {
			if _, err := shiftPeriodEnd(ctx, tx, subscriptionID, -rec.CompensationDays); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// shiftPeriodEnd moves current_period_end by days in a single statement. It reports
// false when the subscription has no period end to move.
func shiftPeriodEnd(ctx context.Context, exec db.Executor, subscriptionID uuid.UUID, days int) (bool, error) {
	const query = `
		UPDATE subscriptions
		SET current_period_end = current_period_end + ($2 * INTERVAL '1 day'), updated_at = now()
		WHERE id = $1 AND current_period_end IS NOT NULL`

	result, err := exec.ExecContext(ctx, query, subscriptionID, days)
	if err != nil {
		return false, persistence("shift period end", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, persistence("shift period end", err)
	}
	return n > 0, nil
}

func (r *Repository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM skipped_deliveries
		WHERE subscription_id = $1
		ORDER BY delivery_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, persistence("list skips", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, persistence("scan skip", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("iterate skips", err)
	}
	return out, nil
}

// SkippedBetween returns the skipped dates in [from, to], keyed by YYYY-MM-DD.
func (r *Repository) SkippedBetween(ctx context.Context, subscriptionID uuid.UUID, from, to time.Time) (map[string]bool, error) {
	const query = `
		SELECT delivery_date FROM skipped_deliveries
		WHERE subscription_id = $1 AND delivery_date BETWEEN $2 AND $3`

	rows, err := r.db.QueryContext(ctx, query, subscriptionID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, persistence("list skipped dates", err)
	}
	defer rows.Close()

	skipped := make(map[string]bool)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, persistence("scan skipped date", err)
		}
		skipped[dateArg(d)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("iterate skipped dates", err)
	}
	return skipped, nil
}
