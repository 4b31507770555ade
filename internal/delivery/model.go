package delivery

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

var (
	ErrNotFound      = errors.New("delivery not found")
	ErrInvalidStatus = errors.New("unknown delivery status")
)

// Status is the fulfilment state of one delivery.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusPacked         Status = "packed"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusDelayed        Status = "delayed"
	StatusCancelled      Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusPacked, StatusOutForDelivery,
		StatusDelivered, StatusDelayed, StatusCancelled:
		return true
	}
	return false
}

// Delivery is a row of the deliveries table.
type Delivery struct {
	ID              uuid.UUID `json:"id"`
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	UserID          uuid.UUID `json:"user_id"`
	DeliveryDate    time.Time `json:"delivery_date"`
	Status          Status    `json:"status"`
	TrackingNumber  string    `json:"tracking_number"`
	Notes           string    `json:"notes"`
	StatusUpdatedAt time.Time `json:"status_updated_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// MealStatus summarizes how much of the current billing period has been fulfilled.
type MealStatus struct {
	SubscriptionID       uuid.UUID `json:"subscription_id"`
	PeriodStart          string    `json:"period_start,omitempty"`
	PeriodEnd            string    `json:"period_end,omitempty"`
	MealsPerDay          int       `json:"meals_per_day"`
	DeliveryDaysPerWeek  int       `json:"delivery_days_per_week"`
	PromisedMeals        int       `json:"promised_meals"`
	DeliveredMeals       int       `json:"delivered_meals"`
	SkippedMeals         int       `json:"skipped_meals"`
	RemainingMeals       int       `json:"remaining_meals"`
	CompletionPercentage float64   `json:"completion_percentage"`
	IsPeriodComplete     bool      `json:"is_period_complete"`
	NeedsRenewal         bool      `json:"needs_renewal"`
}

// History entry kinds.
const (
	EntryDelivery = "delivery"
	EntrySkipped  = "skipped"
)

// HistoryEntry is one fulfilled or skipped day of a subscription.
type HistoryEntry struct {
	Date                string     `json:"date"`
	DateFormatted       string     `json:"date_formatted"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	TrackingNumber      string     `json:"tracking_number,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	StatusUpdatedAt     *time.Time `json:"status_updated_at,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	CompensationApplied bool       `json:"compensation_applied"`
	SkippedAt           *time.Time `json:"skipped_at,omitempty"`
}

// History is a subscription's deliveries and skips, newest first.
type History struct {
	SubscriptionID  uuid.UUID          `json:"subscription_id"`
	MealPlan        string             `json:"meal_plan"`
	Frequency       schedule.Frequency `json:"frequency"`
	StartDate       time.Time          `json:"start_date"`
	TotalDeliveries int                `json:"total_deliveries"`
	TotalSkipped    int                `json:"total_skipped"`
	Entries         []HistoryEntry     `json:"delivery_history"`
}
