package holiday

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
	Create(context.Context, Params) (Holiday, error)
	Update(context.Context, uuid.UUID, Params) (Holiday, error)
	Delete(context.Context, uuid.UUID) error
	GetByID(context.Context, uuid.UUID) (Holiday, error)
	List(context.Context) ([]Holiday, error)
	ListFrom(ctx context.Context, from time.Time) ([]Holiday, error)
	ActiveOn(ctx context.Context, date time.Time) (*Holiday, error)
	Overlaps(ctx context.Context, start, end time.Time, exclude uuid.UUID) (bool, error)
}

// Repository handles persistence for holidays.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, name, description, start_date, end_date, is_active, protect_meals,
		show_popup, popup_message, popup_options, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanHoliday(row scanner) (Holiday, error) {
	var h Holiday
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.StartDate,
		&h.EndDate,
		&h.IsActive,
		&h.ProtectMeals,
		&h.ShowPopup,
		&h.PopupMessage,
		pq.Array(&h.PopupOptions),
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	return h, err
}

func dateArg(t time.Time) string {
	return t.Format(schedule.DateLayout)
}

func (r *Repository) Create(ctx context.Context, p Params) (Holiday, error) {
	query := `
		INSERT INTO holidays (name, description, start_date, end_date, is_active, protect_meals,
			show_popup, popup_message, popup_options)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + selectColumns

	h, err := scanHoliday(r.db.QueryRowContext(ctx, query,
		p.Name,
		p.Description,
		dateArg(p.StartDate),
		dateArg(p.EndDate),
		p.IsActive,
		p.ProtectMeals,
		p.ShowPopup,
		p.PopupMessage,
		pq.Array(p.PopupOptions),
	))
	if err != nil {
		return Holiday{}, fmt.Errorf("insert holiday: %w", err)
	}
	return h, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p Params) (Holiday, error) {
	query := `
		UPDATE holidays
		SET name = $2, description = $3, start_date = $4, end_date = $5, is_active = $6,
			protect_meals = $7, show_popup = $8, popup_message = $9, popup_options = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + selectColumns

	h, err := scanHoliday(r.db.QueryRowContext(ctx, query,
		id,
		p.Name,
		p.Description,
		dateArg(p.StartDate),
		dateArg(p.EndDate),
		p.IsActive,
		p.ProtectMeals,
		p.ShowPopup,
		p.PopupMessage,
		pq.Array(p.PopupOptions),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Holiday{}, ErrNotFound
		}
		return Holiday{}, fmt.Errorf("update holiday: %w", err)
	}
	return h, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Holiday, error) {
	h, err := scanHoliday(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM holidays WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Holiday{}, ErrNotFound
		}
		return Holiday{}, fmt.Errorf("select holiday: %w", err)
	}
	return h, nil
}

func (r *Repository) List(ctx context.Context) ([]Holiday, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM holidays ORDER BY start_date DESC`)
}

// ListFrom returns active holidays that have not ended before from, soonest first.
func (r *Repository) ListFrom(ctx context.Context, from time.Time) ([]Holiday, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM holidays
		WHERE is_active AND end_date >= $1 ORDER BY start_date`, dateArg(from))
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Holiday, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holidays: %w", err)
	}
	return out, nil
}

// ActiveOn returns the active holiday covering date, or nil when there is none.
func (r *Repository) ActiveOn(ctx context.Context, date time.Time) (*Holiday, error) {
	query := `SELECT ` + selectColumns + ` FROM holidays
		WHERE is_active AND start_date <= $1 AND end_date >= $1
		ORDER BY start_date DESC
		LIMIT 1`

	h, err := scanHoliday(r.db.QueryRowContext(ctx, query, dateArg(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select current holiday: %w", err)
	}
	return &h, nil
}

func (r *Repository) Overlaps(ctx context.Context, start, end time.Time, exclude uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE is_active AND id <> $3 AND start_date <= $2 AND end_date >= $1
		)`

	var overlaps bool
	if err := r.db.QueryRowContext(ctx, query, dateArg(start), dateArg(end), exclude).Scan(&overlaps); err != nil {
		return false, fmt.Errorf("check holiday overlap: %w", err)
	}
	return overlaps, nil
}
