package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type guard bool

func (g guard) ProtectsMeals() bool { return bool(g) }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMealTypeFromFlags(t *testing.T) {
	tests := []struct {
		name                     string
		breakfast, lunch, dinner bool
		want                     MealType
	}{
		{"all three", true, true, true, MealAllDay},
		{"breakfast only", true, false, false, MealBreakfast},
		{"lunch only", false, true, false, MealLunch},
		{"dinner only", false, false, true, MealDinner},
		{"lunch and dinner", false, true, true, MealAllDay},
		{"none", false, false, false, MealAllDay},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MealTypeFromFlags(tc.breakfast, tc.lunch, tc.dinner))
		})
	}
}

func TestPolicy_CutoffIsSevenPMDayBefore(t *testing.T) {
	p := NewPolicy(time.UTC, DefaultCutoffHour, nil)
	delivery := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	for _, mt := range []MealType{MealBreakfast, MealLunch, MealDinner, MealAllDay} {
		cutoff := p.CutoffFor(mt, delivery)
		assert.Equal(t, time.Date(2025, time.February, 28, 19, 0, 0, 0, time.UTC), cutoff, mt)
	}
}

func TestPolicy_CanSkip_Boundary(t *testing.T) {
	delivery := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		allowed bool
		err     error
	}{
		{"18:59 day before", time.Date(2025, time.January, 9, 18, 59, 0, 0, time.UTC), true, nil},
		{"exactly 19:00", time.Date(2025, time.January, 9, 19, 0, 0, 0, time.UTC), true, nil},
		{"19:01 day before", time.Date(2025, time.January, 9, 19, 1, 0, 0, time.UTC), false, ErrCutoffPassed},
		{"delivery day", time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC), false, ErrCutoffPassed},
		{"after delivery day", time.Date(2025, time.January, 11, 8, 0, 0, 0, time.UTC), false, ErrPastDeliveryDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPolicy(time.UTC, DefaultCutoffHour, fixedClock(tc.now))
			dec := p.CanSkip(MealLunch, delivery, nil)
			assert.Equal(t, tc.allowed, dec.Allowed)
			assert.ErrorIs(t, dec.Err, tc.err)
			assert.Equal(t, MealLunch, dec.MealType)
		})
	}
}

func TestPolicy_CanSkip_PastDateAlwaysRejected(t *testing.T) {
	now := time.Date(2025, time.June, 15, 6, 0, 0, 0, time.UTC)
	p := NewPolicy(time.UTC, 23, fixedClock(now))

	for days := 1; days <= 30; days++ {
		dec := p.CanSkip(MealAllDay, now.AddDate(0, 0, -days), nil)
		assert.False(t, dec.Allowed)
		assert.ErrorIs(t, dec.Err, ErrPastDeliveryDate)
	}
}

func TestPolicy_CanSkip_HolidayVeto(t *testing.T) {
	now := time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)
	p := NewPolicy(time.UTC, DefaultCutoffHour, fixedClock(now))
	delivery := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	assert.True(t, p.CanSkip(MealAllDay, delivery, nil).Allowed)
	assert.True(t, p.CanSkip(MealAllDay, delivery, guard(false)).Allowed)

	dec := p.CanSkip(MealAllDay, delivery, guard(true))
	assert.False(t, dec.Allowed)
	assert.ErrorIs(t, dec.Err, ErrHolidayProtected)
}

func TestPolicy_EvaluatesInDeliveryZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 13:00 UTC is 18:30 IST, still before the 19:00 IST cutoff.
	now := time.Date(2025, time.January, 9, 13, 0, 0, 0, time.UTC)
	p := NewPolicy(ist, DefaultCutoffHour, fixedClock(now))

	delivery := time.Date(2025, time.January, 10, 0, 0, 0, 0, ist)
	assert.True(t, p.CanSkip(MealDinner, delivery, nil).Allowed)

	// 13:31 UTC is 19:01 IST.
	p = NewPolicy(ist, DefaultCutoffHour, fixedClock(now.Add(31*time.Minute)))
	assert.ErrorIs(t, p.CanSkip(MealDinner, delivery, nil).Err, ErrCutoffPassed)
}

func TestPolicy_WithCutoffHour(t *testing.T) {
	p := NewPolicy(time.UTC, DefaultCutoffHour, nil).WithCutoffHour(MealBreakfast, 17)
	delivery := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 17, p.CutoffFor(MealBreakfast, delivery).Hour())
	assert.Equal(t, 19, p.CutoffFor(MealDinner, delivery).Hour())
}
