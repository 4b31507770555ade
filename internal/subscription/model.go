package subscription

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

var (
	ErrNotFound          = errors.New("subscription not found")
	ErrUnauthorized      = errors.New("subscription belongs to another user")
	ErrInvalidTransition = errors.New("subscription status does not allow this action")
	ErrInvalidFrequency  = errors.New("frequency must be weekly or monthly")
	ErrSamePlan          = errors.New("subscription is already on this meal plan")
	ErrInvalidTiming     = errors.New("plan change must be immediate or next_billing")
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// Subscription mirrors the subscriptions table joined with the plan fields the
// delivery rules need.
type Subscription struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"user_id"`
	MealPlanID         uuid.UUID          `json:"meal_plan_id"`
	PlanName           string             `json:"plan_name"`
	MealType           schedule.MealType  `json:"meal_type"`
	MealsPerDay        int                `json:"meals_per_day"`
	Frequency          schedule.Frequency `json:"frequency"`
	Status             Status             `json:"status"`
	Price              int                `json:"price"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	EndDate            *time.Time         `json:"end_date,omitempty"`
	DeliveryDays       schedule.Weekdays  `json:"delivery_days"`
	VegetarianDays     schedule.Weekdays  `json:"vegetarian_days"`
	NextMealPlanID     *uuid.UUID         `json:"next_meal_plan_id,omitempty"`
	NextPrice          *int               `json:"next_price,omitempty"`
	PlanChangeDate     *time.Time         `json:"meal_plan_change_date,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// OwnedBy reports whether userID owns the subscription.
func (s Subscription) OwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// DeliversOn reports whether date is one of the subscription's delivery days.
func (s Subscription) DeliversOn(date time.Time) bool {
	return schedule.IsDeliveryDay(s.DeliveryDays, date)
}

// IsVegetarianOn reports whether the meal delivered on date is the vegetarian option.
func (s Subscription) IsVegetarianOn(date time.Time) bool {
	return len(s.VegetarianDays) > 0 && s.VegetarianDays.Contains(date.Weekday())
}

// CreateParams represents validated data needed to insert a subscription.
type CreateParams struct {
	UserID         uuid.UUID
	MealPlanID     uuid.UUID
	Frequency      schedule.Frequency
	Price          int
	PeriodStart    time.Time
	PeriodEnd      time.Time
	DeliveryDays   schedule.Weekdays
	VegetarianDays schedule.Weekdays
}

// TransitionParams moves a subscription between statuses. Nil timestamps keep the stored value.
type TransitionParams struct {
	ID          uuid.UUID
	From        []Status
	To          Status
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	EndDate     *time.Time
}

// PlanTiming selects when a meal plan change takes effect.
type PlanTiming string

const (
	ChangeImmediately PlanTiming = "immediate"
	ChangeNextBilling PlanTiming = "next_billing"
)

// PlanChangeParams either swaps the plan now or records it as pending until EffectiveAt.
type PlanChangeParams struct {
	ID          uuid.UUID
	MealPlanID  uuid.UUID
	Price       int
	Immediate   bool
	EffectiveAt *time.Time
}

// PlanChange is the outcome of a plan change request.
type PlanChange struct {
	Subscription Subscription
	Plan         mealplan.MealPlan
	Immediate    bool
}

// PlanOption is an active plan priced at the subscription's billing frequency.
type PlanOption struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	MealType          schedule.MealType `json:"meal_type"`
	IncludesBreakfast bool              `json:"includes_breakfast"`
	IncludesLunch     bool              `json:"includes_lunch"`
	IncludesDinner    bool              `json:"includes_dinner"`
	IncludesSnacks    bool              `json:"includes_snacks"`
	PlanPrice         int               `json:"plan_price"`
	PriceDifference   int               `json:"price_difference"`
	IsCurrent         bool              `json:"is_current"`
	IsPending         bool              `json:"is_pending"`
}

// PlanComparison lists the plans a subscriber can switch to.
type PlanComparison struct {
	SubscriptionID uuid.UUID          `json:"subscription_id"`
	CurrentPlanID  uuid.UUID          `json:"current_plan_id"`
	Frequency      schedule.Frequency `json:"frequency"`
	CurrentPrice   int                `json:"current_price"`
	Plans          []PlanOption       `json:"plans"`
}
