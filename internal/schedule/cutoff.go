package schedule

import "time"

// DefaultCutoffHour is 7 PM on the day before delivery.
const DefaultCutoffHour = 19

// HolidayGuard is the current holiday as seen by the cutoff policy. A nil guard means no holiday.
type HolidayGuard interface {
	ProtectsMeals() bool
}

// Decision is the outcome of a cutoff check.
type Decision struct {
	Allowed  bool
	Cutoff   time.Time
	MealType MealType
	// Err is nil when Allowed, otherwise one of ErrHolidayProtected, ErrPastDeliveryDate or ErrCutoffPassed.
	Err error
}

// Policy decides whether a delivery may still be skipped or restored.
type Policy struct {
	loc         *time.Location
	cutoffHours map[MealType]int
	now         func() time.Time
}

// NewPolicy builds a policy where every meal type shares the same cutoff hour.
func NewPolicy(loc *time.Location, cutoffHour int, now func() time.Time) *Policy {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Policy{
		loc: loc,
		cutoffHours: map[MealType]int{
			MealBreakfast: cutoffHour,
			MealLunch:     cutoffHour,
			MealDinner:    cutoffHour,
			MealAllDay:    cutoffHour,
		},
		now: now,
	}
}

// WithCutoffHour overrides the cutoff for a single meal type.
func (p *Policy) WithCutoffHour(mt MealType, hour int) *Policy {
	p.cutoffHours[mt] = hour
	return p
}

// Location is the time zone delivery dates and cutoffs are evaluated in.
func (p *Policy) Location() *time.Location { return p.loc }

// Now returns the policy clock in the delivery time zone.
func (p *Policy) Now() time.Time { return p.now().In(p.loc) }

// Today is the current calendar date in the delivery time zone.
func (p *Policy) Today() time.Time { return DateOf(p.Now()) }

// CutoffFor returns the last instant a request for deliveryDate is accepted.
func (p *Policy) CutoffFor(mt MealType, deliveryDate time.Time) time.Time {
	hour, ok := p.cutoffHours[mt]
	if !ok {
		hour = p.cutoffHours[MealAllDay]
	}
	y, m, d := deliveryDate.Date()
	return time.Date(y, m, d-1, hour, 0, 0, 0, p.loc)
}

// CanSkip gates both skip and unskip requests. A protecting holiday vetoes regardless of timing.
func (p *Policy) CanSkip(mt MealType, deliveryDate time.Time, holiday HolidayGuard) Decision {
	y, m, d := deliveryDate.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, p.loc)

	dec := Decision{
		Cutoff:   p.CutoffFor(mt, date),
		MealType: mt,
	}

	if holiday != nil && holiday.ProtectsMeals() {
		dec.Err = ErrHolidayProtected
		return dec
	}

	now := p.Now()
	switch {
	case date.Before(DateOf(now)):
		dec.Err = ErrPastDeliveryDate
	case now.After(dec.Cutoff):
		dec.Err = ErrCutoffPassed
	default:
		dec.Allowed = true
	}
	return dec
}
