package mealplan

import (
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// MealPlan mirrors the meal_plans table.
type MealPlan struct {
	ID                uuid.UUID         `json:"id"`
	Name              string            `json:"name"`
	PriceWeekly       int               `json:"price_weekly"`
	PriceMonthly      int               `json:"price_monthly"`
	IncludesBreakfast bool              `json:"includes_breakfast"`
	IncludesLunch     bool              `json:"includes_lunch"`
	IncludesDinner    bool              `json:"includes_dinner"`
	IncludesSnacks    bool              `json:"includes_snacks"`
	MealType          schedule.MealType `json:"meal_type"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// MealsPerDay counts the meals delivered on each delivery day.
func (p MealPlan) MealsPerDay() int {
	return schedule.MealsPerDay(p.IncludesBreakfast, p.IncludesLunch, p.IncludesDinner, p.IncludesSnacks)
}

// PriceFor returns the plan price for a billing frequency.
func (p MealPlan) PriceFor(freq schedule.Frequency) int {
	if freq == schedule.FrequencyMonthly {
		return p.PriceMonthly
	}
	return p.PriceWeekly
}

// CreateParams represents validated data needed to insert a meal plan.
type CreateParams struct {
	Name              string
	PriceWeekly       int
	PriceMonthly      int
	IncludesBreakfast bool
	IncludesLunch     bool
	IncludesDinner    bool
	IncludesSnacks    bool
}

// MealType derives the stored meal type from the included meals.
func (p CreateParams) MealType() schedule.MealType {
	return schedule.MealTypeFromFlags(p.IncludesBreakfast, p.IncludesLunch, p.IncludesDinner)
}
