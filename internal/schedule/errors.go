package schedule

import "errors"

var (
	ErrHolidayProtected  = errors.New("meals are protected during the current holiday")
	ErrPastDeliveryDate  = errors.New("delivery date is in the past")
	ErrCutoffPassed      = errors.New("skip cutoff has passed")
	ErrInvalidDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidWeekday    = errors.New("weekday index must be between 0 (Monday) and 6 (Sunday)")
)
