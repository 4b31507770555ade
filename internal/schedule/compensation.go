package schedule

import (
	"fmt"
	"math"
)

// Frequency is how often a subscription is billed.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known billing frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// PeriodDays is the nominal length of one billing period.
func (f Frequency) PeriodDays() int {
	if f == FrequencyMonthly {
		return 30
	}
	return 7
}

// Compensation is the billing period extension granted for one skipped delivery.
type Compensation struct {
	DaysExtended int
	Description  string
}

// Compensate computes the extension for a skipped delivery. Weekly plans get one day;
// monthly plans get 30 days spread over four weeks of deliveries, at least one day.
func Compensate(freq Frequency, weekdays Weekdays) Compensation {
	switch freq {
	case FrequencyWeekly:
		return Compensation{
			DaysExtended: 1,
			Description:  "Subscription extended by 1 day for skipped delivery",
		}
	case FrequencyMonthly:
		perMonth := weekdays.Count() * 4
		days := int(math.Round(30 / float64(perMonth)))
		if days < 1 {
			days = 1
		}
		return Compensation{
			DaysExtended: days,
			Description:  fmt.Sprintf("Monthly subscription extended by %d days for skipped delivery", days),
		}
	default:
		return Compensation{Description: "No compensation needed"}
	}
}
