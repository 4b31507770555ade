package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/events"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// PlanLookup resolves meal plans for new subscriptions and plan changes.
type PlanLookup interface {
	GetByID(context.Context, uuid.UUID) (mealplan.MealPlan, error)
	ListActive(context.Context) ([]mealplan.MealPlan, error)
}

// Service implements subscription ownership and lifecycle rules.
type Service struct {
	store Store
	plans PlanLookup
	pub   events.Publisher
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Store, plans PlanLookup, pub events.Publisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, plans: plans, pub: pub, log: log, now: time.Now}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetOwned loads a subscription and checks it belongs to userID.
func (s *Service) GetOwned(ctx context.Context, userID, id uuid.UUID) (Subscription, error) {
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if !sub.OwnedBy(userID) {
		return Subscription{}, ErrUnauthorized
	}
	return sub, nil
}

// Get loads a subscription without an ownership check; admin use only.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Subscription, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]Subscription, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) ListActive(ctx context.Context) ([]Subscription, error) {
	return s.store.ListActive(ctx)
}

// Create starts a subscription on a plan with its first billing period beginning now.
func (s *Service) Create(ctx context.Context, userID, planID uuid.UUID, freq schedule.Frequency, days, vegetarian schedule.Weekdays) (Subscription, error) {
	if !freq.Valid() {
		return Subscription{}, ErrInvalidFrequency
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return Subscription{}, err
	}
	if !plan.IsActive {
		return Subscription{}, fmt.Errorf("meal plan %s is not active: %w", planID, mealplan.ErrNotFound)
	}

	start := s.now()
	sub, err := s.store.Create(ctx, CreateParams{
		UserID:         userID,
		MealPlanID:     planID,
		Frequency:      freq,
		Price:          plan.PriceFor(freq),
		PeriodStart:    start,
		PeriodEnd:      start.AddDate(0, 0, freq.PeriodDays()),
		DeliveryDays:   days,
		VegetarianDays: vegetarian,
	})
	if err != nil {
		return Subscription{}, err
	}

	s.log.Info("subscription created", "subscription_id", sub.ID, "user_id", userID, "frequency", freq)
	return sub, nil
}

// UpdateDeliveryDays replaces the delivery and vegetarian weekday sets.
func (s *Service) UpdateDeliveryDays(ctx context.Context, id uuid.UUID, days, vegetarian schedule.Weekdays) (Subscription, error) {
	if err := s.store.UpdateDeliveryDays(ctx, id, days, vegetarian); err != nil {
		return Subscription{}, err
	}
	return s.store.GetByID(ctx, id)
}

// Pause stops deliveries of an active subscription.
func (s *Service) Pause(ctx context.Context, userID, id uuid.UUID) (Subscription, error) {
	return s.transition(ctx, userID, id, func(Subscription) TransitionParams {
		return TransitionParams{From: []Status{StatusActive}, To: StatusPaused}
	})
}

// Resume reactivates a paused subscription with a fresh billing period.
func (s *Service) Resume(ctx context.Context, userID, id uuid.UUID) (Subscription, error) {
	return s.transition(ctx, userID, id, func(sub Subscription) TransitionParams {
		start := s.now()
		end := start.AddDate(0, 0, sub.Frequency.PeriodDays())
		return TransitionParams{
			From:        []Status{StatusPaused},
			To:          StatusActive,
			PeriodStart: &start,
			PeriodEnd:   &end,
		}
	})
}

// Cancel retires the subscription; the row is kept for history.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (Subscription, error) {
	return s.transition(ctx, userID, id, func(Subscription) TransitionParams {
		end := s.now()
		return TransitionParams{
			From:    []Status{StatusActive, StatusPaused},
			To:      StatusCanceled,
			EndDate: &end,
		}
	})
}

// ChangePlan moves the subscription to another active plan. A next_billing change is
// held as pending until the current period ends; without a future period end it
// applies at once. Choosing the current plan discards a pending change.
func (s *Service) ChangePlan(ctx context.Context, userID, id, planID uuid.UUID, timing PlanTiming) (PlanChange, error) {
	if timing != ChangeImmediately && timing != ChangeNextBilling {
		return PlanChange{}, ErrInvalidTiming
	}

	sub, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return PlanChange{}, err
	}
	if sub.Status != StatusActive && sub.Status != StatusPaused {
		return PlanChange{}, ErrInvalidTransition
	}
	if planID == sub.MealPlanID && sub.NextMealPlanID == nil {
		return PlanChange{}, ErrSamePlan
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return PlanChange{}, err
	}
	if !plan.IsActive {
		return PlanChange{}, fmt.Errorf("meal plan %s is not active: %w", planID, mealplan.ErrNotFound)
	}

	params := PlanChangeParams{ID: id, MealPlanID: planID, Price: plan.PriceFor(sub.Frequency)}
	end := sub.CurrentPeriodEnd
	if timing == ChangeImmediately || planID == sub.MealPlanID || end == nil || !end.After(s.now()) {
		params.Immediate = true
	} else {
		params.EffectiveAt = end
	}

	if err := s.store.ChangePlan(ctx, params); err != nil {
		return PlanChange{}, err
	}
	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PlanChange{}, err
	}

	effective := "immediate"
	if !params.Immediate {
		effective = params.EffectiveAt.Format(schedule.DateLayout)
	}
	s.log.Info("meal plan changed", "subscription_id", id, "from_plan", sub.MealPlanID, "to_plan", planID, "effective", effective)
	events.Emit(ctx, s.pub, s.log, events.New(events.TypePlanChanged, map[string]any{
		"subscription_id": id,
		"user_id":         userID,
		"from_plan_id":    sub.MealPlanID,
		"to_plan_id":      planID,
		"price":           params.Price,
		"effective":       effective,
	}))
	return PlanChange{Subscription: updated, Plan: plan, Immediate: params.Immediate}, nil
}

// ApplyDuePlanChanges promotes pending plan changes whose billing period has ended.
func (s *Service) ApplyDuePlanChanges(ctx context.Context) (int64, error) {
	n, err := s.store.ApplyDuePlanChanges(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.log.Info("pending plan changes applied", "count", n)
	return n, nil
}

// ComparePlans prices every active plan at the subscription's frequency against
// what the subscriber pays today.
func (s *Service) ComparePlans(ctx context.Context, userID, id uuid.UUID) (PlanComparison, error) {
	sub, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return PlanComparison{}, err
	}
	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return PlanComparison{}, err
	}

	out := PlanComparison{
		SubscriptionID: sub.ID,
		CurrentPlanID:  sub.MealPlanID,
		Frequency:      sub.Frequency,
		CurrentPrice:   sub.Price,
		Plans:          make([]PlanOption, 0, len(plans)),
	}
	for _, p := range plans {
		price := p.PriceFor(sub.Frequency)
		out.Plans = append(out.Plans, PlanOption{
			ID:                p.ID,
			Name:              p.Name,
			MealType:          p.MealType,
			IncludesBreakfast: p.IncludesBreakfast,
			IncludesLunch:     p.IncludesLunch,
			IncludesDinner:    p.IncludesDinner,
			IncludesSnacks:    p.IncludesSnacks,
			PlanPrice:         price,
			PriceDifference:   price - sub.Price,
			IsCurrent:         p.ID == sub.MealPlanID,
			IsPending:         sub.NextMealPlanID != nil && *sub.NextMealPlanID == p.ID,
		})
	}
	return out, nil
}

func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, build func(Subscription) TransitionParams) (Subscription, error) {
	sub, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return Subscription{}, err
	}

	params := build(sub)
	params.ID = id
	if err := s.store.Transition(ctx, params); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.log.Warn("subscription transition rejected", "subscription_id", id, "status", sub.Status, "to", params.To)
		}
		return Subscription{}, err
	}

	updated, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Subscription{}, err
	}

	s.log.Info("subscription status changed", "subscription_id", id, "from", sub.Status, "to", updated.Status)
	events.Emit(ctx, s.pub, s.log, events.New(events.TypeSubscriptionChanged, map[string]any{
		"subscription_id": id,
		"user_id":         userID,
		"from":            sub.Status,
		"to":              updated.Status,
	}))
	return updated, nil
}
