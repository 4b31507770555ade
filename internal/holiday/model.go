package holiday

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("holiday not found")
	ErrOverlap      = errors.New("holiday overlaps another active holiday")
	ErrInvalidRange = errors.New("holiday end date is before its start date")
)

// Holiday is a date range during which deliveries are protected from changes.
type Holiday struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsActive     bool      `json:"is_active"`
	ProtectMeals bool      `json:"protect_meals"`
	ShowPopup    bool      `json:"show_popup"`
	PopupMessage string    `json:"popup_message"`
	PopupOptions []string  `json:"popup_options"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProtectsMeals reports whether the holiday vetoes skip changes. Safe on a nil receiver.
func (h *Holiday) ProtectsMeals() bool {
	return h != nil && h.IsActive && h.ProtectMeals
}

// Contains reports whether the calendar day of date falls within the inclusive range.
// Stored dates come back as UTC midnight, so days are compared by their civil date.
func (h *Holiday) Contains(date time.Time) bool {
	d := civil(date)
	return d >= civil(h.StartDate) && d <= civil(h.EndDate)
}

func civil(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Params carries the editable fields of a holiday.
type Params struct {
	Name         string
	Description  string
	StartDate    time.Time
	EndDate      time.Time
	IsActive     bool
	ProtectMeals bool
	ShowPopup    bool
	PopupMessage string
	PopupOptions []string
}

func (p Params) validate() error {
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidRange
	}
	return nil
}
