package schedule

import (
	"fmt"
	"strings"
)

// MealType is the single meal a plan delivers, or AllDay for combined plans.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealAllDay    MealType = "all_day"
)

// MealTypeFromFlags derives the plan's meal type once, when the plan is defined.
// Exactly one included meal yields that meal; every other combination is AllDay.
func MealTypeFromFlags(breakfast, lunch, dinner bool) MealType {
	switch {
	case breakfast && !lunch && !dinner:
		return MealBreakfast
	case !breakfast && lunch && !dinner:
		return MealLunch
	case !breakfast && !lunch && dinner:
		return MealDinner
	default:
		return MealAllDay
	}
}

// ParseMealType validates a stored meal type.
func ParseMealType(s string) (MealType, error) {
	switch mt := MealType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MealBreakfast, MealLunch, MealDinner, MealAllDay:
		return mt, nil
	default:
		return "", fmt.Errorf("unknown meal type %q", s)
	}
}

// Label is the human readable name used in flash messages.
func (m MealType) Label() string {
	switch m {
	case MealBreakfast:
		return "Breakfast"
	case MealLunch:
		return "Lunch"
	case MealDinner:
		return "Dinner"
	default:
		return "All-day"
	}
}
