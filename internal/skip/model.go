package skip

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

var (
	ErrAlreadySkipped = errors.New("delivery already skipped")
	ErrNotSkipped     = errors.New("delivery is not skipped")
	ErrPersistence    = errors.New("skip could not be saved")
)

// Re-exported so handlers can match every skip failure from one package.
var (
	ErrCutoffPassed      = schedule.ErrCutoffPassed
	ErrHolidayProtected  = schedule.ErrHolidayProtected
	ErrPastDeliveryDate  = schedule.ErrPastDeliveryDate
	ErrInvalidDateFormat = schedule.ErrInvalidDateFormat
	ErrUnauthorized      = subscription.ErrUnauthorized
	ErrNotFound          = subscription.ErrNotFound
)

// Reason tags why a delivery was skipped.
type Reason string

const (
	ReasonUserRequest Reason = "user_request"
	ReasonBulkRequest Reason = "bulk_user_request"
)

// Record is a row of skipped_deliveries.
type Record struct {
	ID                  uuid.UUID         `json:"id"`
	SubscriptionID      uuid.UUID         `json:"subscription_id"`
	DeliveryDate        time.Time         `json:"delivery_date"`
	Reason              Reason            `json:"reason"`
	MealType            schedule.MealType `json:"meal_type"`
	CompensationApplied bool              `json:"compensation_applied"`
	CompensationDays    int               `json:"compensation_days"`
	CompensationDetails string            `json:"compensation_details"`
	CreatedAt           time.Time         `json:"created_at"`
}

// InsertParams describes a skip to persist together with its period extension.
type InsertParams struct {
	SubscriptionID uuid.UUID
	DeliveryDate   time.Time
	Reason         Reason
	MealType       schedule.MealType
	Compensation   schedule.Compensation
}

// Result is returned by a successful skip.
type Result struct {
	Record       Record
	Compensation schedule.Compensation
	Cutoff       time.Time
}

// Failure explains why one date of a bulk request was not skipped.
type Failure struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// BulkResult reports per-date outcomes of a bulk skip.
type BulkResult struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Upcoming is one scheduled delivery in the customer's next window.
type Upcoming struct {
	Date             string            `json:"date"`
	FormattedDate    string            `json:"formatted_date"`
	IsSkipped        bool              `json:"is_skipped"`
	CanSkip          bool              `json:"can_skip"`
	CanUnskip        bool              `json:"can_unskip"`
	IsVegetarian     bool              `json:"is_vegetarian"`
	MealType         schedule.MealType `json:"meal_type"`
	Cutoff           time.Time         `json:"cutoff_datetime"`
	CutoffFormatted  string            `json:"cutoff_formatted"`
	TimeUntilCutoff  string            `json:"time_until_cutoff"`
	HolidayProtected bool              `json:"holiday_protected"`
}
