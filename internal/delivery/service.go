package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/events"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/skip"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

// Subscriptions is the subset of the subscription service deliveries depend on.
type Subscriptions interface {
	GetOwned(ctx context.Context, userID, id uuid.UUID) (subscription.Subscription, error)
	ListActive(ctx context.Context) ([]subscription.Subscription, error)
}

// Skips reports which dates a subscriber has skipped.
type Skips interface {
	SkippedBetween(ctx context.Context, subscriptionID uuid.UUID, from, to time.Time) (map[string]bool, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]skip.Record, error)
}

// Service manages fulfilment records and meal accounting.
type Service struct {
	store Store
	subs  Subscriptions
	skips Skips
	pub   events.Publisher
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, subs Subscriptions, skips Skips, pub events.Publisher, log *slog.Logger, now func() time.Time) *Service {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, subs: subs, skips: skips, pub: pub, log: log, now: now}
}

// ForDate returns the deliveries for date, first creating pending records for every
// active subscription scheduled that day and not skipped.
func (s *Service) ForDate(ctx context.Context, date time.Time) ([]Delivery, error) {
	subs, err := s.subs.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, sub := range subs {
		if !sub.DeliversOn(date) {
			continue
		}
		skipped, err := s.skips.SkippedBetween(ctx, sub.ID, date, date)
		if err != nil {
			return nil, err
		}
		if skipped[date.Format(schedule.DateLayout)] {
			continue
		}
		if err := s.store.EnsurePending(ctx, sub.ID, sub.UserID, date); err != nil {
			return nil, err
		}
		created++
	}
	s.log.Debug("deliveries ensured", "date", date.Format(schedule.DateLayout), "scheduled", created)

	return s.store.ListByDate(ctx, date)
}

// Summary counts the deliveries for date by status.
func (s *Service) Summary(ctx context.Context, date time.Time) (map[Status]int, error) {
	return s.store.CountByStatus(ctx, date)
}

// UpdateStatus moves a delivery to status; a non-empty note is appended with a timestamp.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, note string) (Delivery, error) {
	if !status.Valid() {
		return Delivery{}, ErrInvalidStatus
	}

	line := ""
	if note = strings.TrimSpace(note); note != "" {
		line = fmt.Sprintf("%s (%s)", note, s.now().Format("2006-01-02 15:04"))
	}

	d, err := s.store.UpdateStatus(ctx, id, status, line)
	if err != nil {
		return Delivery{}, err
	}

	s.log.Info("delivery status updated", "delivery_id", id, "subscription_id", d.SubscriptionID, "status", status)
	events.Emit(ctx, s.pub, s.log, events.New(events.TypeDeliveryStatusChanged, map[string]any{
		"delivery_id":     id,
		"subscription_id": d.SubscriptionID,
		"user_id":         d.UserID,
		"delivery_date":   d.DeliveryDate.Format(schedule.DateLayout),
		"status":          status,
	}))
	return d, nil
}

// MealStatus reports promised, delivered and skipped meals for the current period.
func (s *Service) MealStatus(ctx context.Context, userID, subscriptionID uuid.UUID) (MealStatus, error) {
	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return MealStatus{}, err
	}

	out := MealStatus{
		SubscriptionID:      sub.ID,
		MealsPerDay:         sub.MealsPerDay,
		DeliveryDaysPerWeek: sub.DeliveryDays.Count(),
		PromisedMeals:       schedule.PromisedMeals(sub.MealsPerDay, sub.DeliveryDays, sub.Frequency),
	}

	if sub.CurrentPeriodStart != nil && sub.CurrentPeriodEnd != nil {
		from, to := *sub.CurrentPeriodStart, *sub.CurrentPeriodEnd
		out.PeriodStart = from.Format(schedule.DateLayout)
		out.PeriodEnd = to.Format(schedule.DateLayout)

		delivered, err := s.store.CountDelivered(ctx, sub.ID, from, to)
		if err != nil {
			return MealStatus{}, err
		}
		skipped, err := s.skips.SkippedBetween(ctx, sub.ID, from, to)
		if err != nil {
			return MealStatus{}, err
		}
		out.DeliveredMeals = delivered * sub.MealsPerDay
		out.SkippedMeals = len(skipped) * sub.MealsPerDay
	}

	out.RemainingMeals = max(0, out.PromisedMeals-out.DeliveredMeals)
	out.IsPeriodComplete = out.RemainingMeals == 0
	out.NeedsRenewal = out.IsPeriodComplete && sub.Status == subscription.StatusActive
	if out.PromisedMeals > 0 {
		pct := float64(out.DeliveredMeals) / float64(out.PromisedMeals) * 100
		out.CompletionPercentage = math.Round(pct*100) / 100
	}
	return out, nil
}

const historyDateLayout = "January 02, 2006"

// History merges the delivery records and skips of a subscription, newest date first.
func (s *Service) History(ctx context.Context, userID, subscriptionID uuid.UUID) (History, error) {
	sub, err := s.subs.GetOwned(ctx, userID, subscriptionID)
	if err != nil {
		return History{}, err
	}

	deliveries, err := s.store.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return History{}, err
	}
	skips, err := s.skips.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return History{}, err
	}

	entries := make([]HistoryEntry, 0, len(deliveries)+len(skips))
	for _, d := range deliveries {
		updated := d.StatusUpdatedAt
		entries = append(entries, HistoryEntry{
			Date:            d.DeliveryDate.Format(schedule.DateLayout),
			DateFormatted:   d.DeliveryDate.Format(historyDateLayout),
			Type:            EntryDelivery,
			Status:          string(d.Status),
			TrackingNumber:  d.TrackingNumber,
			Notes:           d.Notes,
			StatusUpdatedAt: &updated,
		})
	}
	for _, rec := range skips {
		created := rec.CreatedAt
		entries = append(entries, HistoryEntry{
			Date:                rec.DeliveryDate.Format(schedule.DateLayout),
			DateFormatted:       rec.DeliveryDate.Format(historyDateLayout),
			Type:                EntrySkipped,
			Status:              EntrySkipped,
			Reason:              string(rec.Reason),
			CompensationApplied: rec.CompensationApplied,
			SkippedAt:           &created,
		})
	}
	// Dates are ISO formatted so string order is date order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})

	return History{
		SubscriptionID:  sub.ID,
		MealPlan:        sub.PlanName,
		Frequency:       sub.Frequency,
		StartDate:       sub.CreatedAt,
		TotalDeliveries: len(deliveries),
		TotalSkipped:    len(skips),
		Entries:         entries,
	}, nil
}
