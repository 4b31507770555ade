package delivery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Store is the persistence contract for delivery records.
type Store interface {
	EnsurePending(ctx context.Context, subscriptionID, userID uuid.UUID, date time.Time) error
	ListByDate(ctx context.Context, date time.Time) ([]Delivery, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, noteLine string) (Delivery, error)
	CountDelivered(ctx context.Context, subscriptionID uuid.UUID, from, to time.Time) (int, error)
	CountByStatus(ctx context.Context, date time.Time) (map[Status]int, error)
}

// Repository handles persistence for deliveries.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, subscription_id, user_id, delivery_date, status, tracking_number,
	notes, status_updated_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(row scanner) (Delivery, error) {
	var d Delivery
	err := row.Scan(
		&d.ID,
		&d.SubscriptionID,
		&d.UserID,
		&d.DeliveryDate,
		&d.Status,
		&d.TrackingNumber,
		&d.Notes,
		&d.StatusUpdatedAt,
		&d.CreatedAt,
	)
	return d, err
}

func dateArg(t time.Time) string {
	return t.Format(schedule.DateLayout)
}

// EnsurePending creates the pending record for a subscription's delivery day once.
func (r *Repository) EnsurePending(ctx context.Context, subscriptionID, userID uuid.UUID, date time.Time) error {
	const query = `
		INSERT INTO deliveries (subscription_id, user_id, delivery_date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (subscription_id, delivery_date) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, subscriptionID, userID, dateArg(date), StatusPending); err != nil {
		return fmt.Errorf("ensure delivery: %w", err)
	}
	return nil
}

func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]Delivery, error) {
	query := `SELECT ` + selectColumns + ` FROM deliveries WHERE delivery_date = $1 ORDER BY created_at`
	return r.list(ctx, query, dateArg(date))
}

func (r *Repository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Delivery, error) {
	query := `SELECT ` + selectColumns + ` FROM deliveries WHERE subscription_id = $1 ORDER BY delivery_date DESC`
	return r.list(ctx, query, subscriptionID)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Delivery, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}

// UpdateStatus sets the status and appends noteLine (if any) to the notes.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, noteLine string) (Delivery, error) {
	query := `
		UPDATE deliveries
		SET status = $2,
			status_updated_at = now(),
			notes = CASE
				WHEN $3 = '' THEN notes
				WHEN notes = '' THEN $3
				ELSE notes || E'\n' || $3
			END
		WHERE id = $1
		RETURNING ` + selectColumns

	d, err := scanDelivery(r.db.QueryRowContext(ctx, query, id, status, noteLine))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Delivery{}, ErrNotFound
		}
		return Delivery{}, fmt.Errorf("update delivery status: %w", err)
	}
	return d, nil
}

func (r *Repository) CountDelivered(ctx context.Context, subscriptionID uuid.UUID, from, to time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM deliveries
		WHERE subscription_id = $1 AND status = $2 AND delivery_date BETWEEN $3 AND $4`

	var n int
	if err := r.db.QueryRowContext(ctx, query, subscriptionID, StatusDelivered, dateArg(from), dateArg(to)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count delivered: %w", err)
	}
	return n, nil
}

func (r *Repository) CountByStatus(ctx context.Context, date time.Time) (map[Status]int, error) {
	const query = `SELECT status, COUNT(*) FROM deliveries WHERE delivery_date = $1 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, dateArg(date))
	if err != nil {
		return nil, fmt.Errorf("count deliveries: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan delivery count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery counts: %w", err)
	}
	return counts, nil
}
