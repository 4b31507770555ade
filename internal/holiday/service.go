package holiday

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/events"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Service owns holiday administration and the current-holiday lookup.
type Service struct {
	store Store
	cache Cache
	pub   events.Publisher
	log   *slog.Logger
	today func() time.Time
}

// NewService wires a service; cache and pub may be nil.
func NewService(store Store, cache Cache, pub events.Publisher, log *slog.Logger, today func() time.Time) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cache: cache, pub: pub, log: log, today: today}
}

// Current returns the active holiday whose range contains today, or nil.
func (s *Service) Current(ctx context.Context) (*Holiday, error) {
	return s.On(ctx, s.today())
}

// On returns the active holiday covering date, or nil.
func (s *Service) On(ctx context.Context, date time.Time) (*Holiday, error) {
	day := date.Format(schedule.DateLayout)

	if s.cache != nil {
		h, found, err := s.cache.Get(ctx, day)
		if err != nil {
			s.log.Warn("holiday cache read failed", "day", day, "error", err)
		} else if found {
			return h, nil
		}
	}

	h, err := s.store.ActiveOn(ctx, date)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, day, h); err != nil {
			s.log.Warn("holiday cache write failed", "day", day, "error", err)
		}
	}
	return h, nil
}

func (s *Service) List(ctx context.Context) ([]Holiday, error) {
	return s.store.List(ctx)
}

// Upcoming lists active holidays that have not ended yet.
func (s *Service) Upcoming(ctx context.Context) ([]Holiday, error) {
	return s.store.ListFrom(ctx, s.today())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Holiday, error) {
	return s.store.GetByID(ctx, id)
}

// Create stores a holiday after rejecting ranges that overlap another active holiday.
func (s *Service) Create(ctx context.Context, p Params) (Holiday, error) {
	p = normalize(p)
	if err := s.checkRange(ctx, p, uuid.Nil); err != nil {
		return Holiday{}, err
	}

	h, err := s.store.Create(ctx, p)
	if err != nil {
		return Holiday{}, err
	}
	s.invalidate(ctx)

	s.log.Info("holiday created", "holiday_id", h.ID, "name", h.Name,
		"start_date", p.StartDate.Format(schedule.DateLayout), "end_date", p.EndDate.Format(schedule.DateLayout))
	events.Emit(ctx, s.pub, s.log, events.New(events.TypeHolidayCreated, h))
	return h, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p Params) (Holiday, error) {
	p = normalize(p)
	if err := s.checkRange(ctx, p, id); err != nil {
		return Holiday{}, err
	}

	h, err := s.store.Update(ctx, id, p)
	if err != nil {
		return Holiday{}, err
	}
	s.invalidate(ctx)
	s.log.Info("holiday updated", "holiday_id", id)
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info("holiday deleted", "holiday_id", id)
	return nil
}

func (s *Service) checkRange(ctx context.Context, p Params, exclude uuid.UUID) error {
	if err := p.validate(); err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	overlaps, err := s.store.Overlaps(ctx, p.StartDate, p.EndDate, exclude)
	if err != nil {
		return err
	}
	if overlaps {
		return ErrOverlap
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("holiday cache invalidation failed", "error", err)
	}
}

func normalize(p Params) Params {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	options := []string{}
	for _, opt := range p.PopupOptions {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	p.PopupOptions = options
	return p
}
