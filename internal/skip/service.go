package skip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/events"
	"github.com/beheryahmed1991/meal-subscription-service/internal/holiday"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

// Subscriptions resolves a subscription on behalf of its owner.
type Subscriptions interface {
	GetOwned(ctx context.Context, userID, id uuid.UUID) (subscription.Subscription, error)
}

// Holidays resolves the holiday in force today.
type Holidays interface {
	Current(ctx context.Context) (*holiday.Holiday, error)
}

// Service is the skip ledger: it applies the cutoff policy, records skips and
// keeps the billing period in step with them.
type Service struct {
	subs         Subscriptions
	holidays     Holidays
	store        Store
	policy       *schedule.Policy
	pub          events.Publisher
	log          *slog.Logger
	upcomingDays int
}

func NewService(subs Subscriptions, holidays Holidays, store Store, policy *schedule.Policy, pub events.Publisher, log *slog.Logger, upcomingDays int) *Service {
	if log == nil {
		log = slog.Default()
	}
	if upcomingDays <= 0 {
		upcomingDays = 14
	}
	return &Service{
		subs:         subs,
		holidays:     holidays,
		store:        store,
		policy:       policy,
		pub:          pub,
		log:          log,
		upcomingDays: upcomingDays,
	}
}

// ParseDate parses a YYYY-MM-DD form value in the delivery time zone.
func (s *Service) ParseDate(value string) (time.Time, error) {
	return schedule.ParseDate(value, s.policy.Location())
}

func (s *Service) currentHoliday(ctx context.Context) (*holiday.Holiday, error) {
	h, err := s.holidays.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load current holiday: %w", ErrPersistence, err)
	}
	return h, nil
}

// Skip records that the subscriber does not want the delivery on date and extends
// the billing period by the compensation for one missed delivery.
func (s *Service) Skip(ctx context.Context, userID, subscriptionID uuid.UUID, date time.Time) (Result, error) {
	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return Result{}, err
	}
	hol, err := s.currentHoliday(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.skipOne(ctx, sub, hol, date, ReasonUserRequest)
}

func (s *Service) skipOne(ctx context.Context, sub subscription.Subscription, hol *holiday.Holiday, date time.Time, reason Reason) (Result, error) {
	dec := s.policy.CanSkip(sub.MealType, date, hol)
	if !dec.Allowed {
		s.log.Warn("skip rejected",
			"subscription_id", sub.ID,
			"delivery_date", date.Format(schedule.DateLayout),
			"meal_type", dec.MealType,
			"reason", dec.Err)
		return Result{Cutoff: dec.Cutoff}, dec.Err
	}

	comp := schedule.Compensate(sub.Frequency, sub.DeliveryDays)
	rec, err := s.store.Insert(ctx, InsertParams{
		SubscriptionID: sub.ID,
		DeliveryDate:   date,
		Reason:         reason,
		MealType:       dec.MealType,
		Compensation:   comp,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySkipped) {
			s.log.Warn("skip rejected", "subscription_id", sub.ID, "delivery_date", date.Format(schedule.DateLayout), "reason", err)
		} else {
			s.log.Error("skip failed", "subscription_id", sub.ID, "delivery_date", date.Format(schedule.DateLayout), "error", err)
		}
		return Result{Cutoff: dec.Cutoff}, err
	}

	s.log.Info("delivery skipped",
		"subscription_id", sub.ID,
		"delivery_date", date.Format(schedule.DateLayout),
		"compensation_days", rec.CompensationDays,
		"compensation_applied", rec.CompensationApplied)
	events.Emit(ctx, s.pub, s.log, events.New(events.TypeDeliverySkipped, map[string]any{
		"subscription_id":   sub.ID,
		"user_id":           sub.UserID,
		"delivery_date":     date.Format(schedule.DateLayout),
		"meal_type":         dec.MealType,
		"compensation_days": rec.CompensationDays,
	}))

	return Result{Record: rec, Compensation: comp, Cutoff: dec.Cutoff}, nil
}

// Unskip restores a previously skipped delivery and reverses exactly the extension
// that skip granted. The cutoff is reported even when the restore is rejected.
func (s *Service) Unskip(ctx context.Context, userID, subscriptionID uuid.UUID, date time.Time) (Result, error) {
	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return Result{}, err
	}
	hol, err := s.currentHoliday(ctx)
	if err != nil {
		return Result{}, err
	}

	dec := s.policy.CanSkip(sub.MealType, date, hol)
	if !dec.Allowed {
		s.log.Warn("unskip rejected",
			"subscription_id", sub.ID,
			"delivery_date", date.Format(schedule.DateLayout),
			"reason", dec.Err)
		return Result{Cutoff: dec.Cutoff}, dec.Err
	}

	rec, err := s.store.Delete(ctx, sub.ID, date)
	if err != nil {
		if !errors.Is(err, ErrNotSkipped) {
			s.log.Error("unskip failed", "subscription_id", sub.ID, "delivery_date", date.Format(schedule.DateLayout), "error", err)
		}
		return Result{Cutoff: dec.Cutoff}, err
	}

	s.log.Info("delivery restored",
		"subscription_id", sub.ID,
		"delivery_date", date.Format(schedule.DateLayout),
		"compensation_reversed", rec.CompensationDays)
	events.Emit(ctx, s.pub, s.log, events.New(events.TypeDeliveryUnskipped, map[string]any{
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
		"delivery_date":   date.Format(schedule.DateLayout),
	}))
	return Result{Record: rec, Cutoff: dec.Cutoff}, nil
}

// BulkSkip skips each date independently; one failing date never undoes another.
func (s *Service) BulkSkip(ctx context.Context, userID, subscriptionID uuid.UUID, dates []string) (BulkResult, error) {
	res := BulkResult{Succeeded: []string{}, Failed: []Failure{}}

	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return res, err
	}
	hol, err := s.currentHoliday(ctx)
	if err != nil {
		return res, err
	}

	for _, raw := range dates {
		date, err := s.ParseDate(raw)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Date: raw, Reason: "Invalid date"})
			continue
		}

		out, err := s.skipOne(ctx, sub, hol, date, ReasonBulkRequest)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Date: raw, Reason: FailureReason(err, out.Cutoff)})
			continue
		}
		res.Succeeded = append(res.Succeeded, date.Format(schedule.DateLayout))
	}

	s.log.Info("bulk skip processed",
		"subscription_id", sub.ID,
		"succeeded", len(res.Succeeded),
		"failed", len(res.Failed))
	return res, nil
}

// FailureReason is the short customer facing explanation used in bulk results.
func FailureReason(err error, cutoff time.Time) string {
	switch {
	case errors.Is(err, ErrAlreadySkipped):
		return "Already skipped"
	case errors.Is(err, ErrCutoffPassed):
		return fmt.Sprintf("Past cutoff (%s)", cutoff.Format("Jan 2 at 3:04 PM"))
	case errors.Is(err, ErrHolidayProtected):
		return "Holiday protected"
	case errors.Is(err, ErrPastDeliveryDate):
		return "Past date"
	case errors.Is(err, ErrInvalidDateFormat):
		return "Invalid date"
	default:
		return "Could not be saved"
	}
}

// History lists the subscription's skips, newest delivery date first.
func (s *Service) History(ctx context.Context, userID, subscriptionID uuid.UUID) ([]Record, error) {
	if _, err := s.subs.GetOwned(ctx, userID, subscriptionID); err != nil {
		return nil, err
	}
	return s.store.ListBySubscription(ctx, subscriptionID)
}

// Upcoming lists the scheduled deliveries starting tomorrow with their skip state.
func (s *Service) Upcoming(ctx context.Context, userID, subscriptionID uuid.UUID) ([]Upcoming, error) {
	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	hol, err := s.currentHoliday(ctx)
	if err != nil {
		return nil, err
	}

	from := s.policy.Today().AddDate(0, 0, 1)
	to := from.AddDate(0, 0, s.upcomingDays-1)
	skipped, err := s.store.SkippedBetween(ctx, sub.ID, from, to)
	if err != nil {
		return nil, err
	}

	now := s.policy.Now()
	dates := schedule.UpcomingDates(sub.DeliveryDays, from, s.upcomingDays)
	out := make([]Upcoming, 0, len(dates))
	for _, d := range dates {
		key := d.Format(schedule.DateLayout)
		dec := s.policy.CanSkip(sub.MealType, d, hol)
		isSkipped := skipped[key]

		until := "Expired"
		if dec.Cutoff.After(now) {
			until = dec.Cutoff.Sub(now).Truncate(time.Minute).String()
		}

		out = append(out, Upcoming{
			Date:             key,
			FormattedDate:    d.Format("Monday, January 02"),
			IsSkipped:        isSkipped,
			CanSkip:          dec.Allowed && !isSkipped,
			CanUnskip:        dec.Allowed && isSkipped,
			IsVegetarian:     sub.IsVegetarianOn(d),
			MealType:         dec.MealType,
			Cutoff:           dec.Cutoff,
			CutoffFormatted:  dec.Cutoff.Format("January 02 at 03:04 PM"),
			TimeUntilCutoff:  until,
			HolidayProtected: errors.Is(dec.Err, ErrHolidayProtected),
		})
	}
	return out, nil
}
