package holiday

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	holidays    map[uuid.UUID]Holiday
	activeCalls int
}

func newStubStore(hs ...Holiday) *stubStore {
	s := &stubStore{holidays: map[uuid.UUID]Holiday{}}
	for _, h := range hs {
		s.holidays[h.ID] = h
	}
	return s
}

func fromParams(id uuid.UUID, p Params) Holiday {
	return Holiday{
		ID: id, Name: p.Name, Description: p.Description, StartDate: p.StartDate, EndDate: p.EndDate,
		IsActive: p.IsActive, ProtectMeals: p.ProtectMeals, ShowPopup: p.ShowPopup,
		PopupMessage: p.PopupMessage, PopupOptions: p.PopupOptions,
	}
}

func (s *stubStore) Create(_ context.Context, p Params) (Holiday, error) {
	h := fromParams(uuid.New(), p)
	s.holidays[h.ID] = h
	return h, nil
}

func (s *stubStore) Update(_ context.Context, id uuid.UUID, p Params) (Holiday, error) {
	if _, ok := s.holidays[id]; !ok {
		return Holiday{}, ErrNotFound
	}
	h := fromParams(id, p)
	s.holidays[id] = h
	return h, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.holidays[id]; !ok {
		return ErrNotFound
	}
	delete(s.holidays, id)
	return nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (Holiday, error) {
	h, ok := s.holidays[id]
	if !ok {
		return Holiday{}, ErrNotFound
	}
	return h, nil
}

func (s *stubStore) List(context.Context) ([]Holiday, error) {
	var out []Holiday
	for _, h := range s.holidays {
		out = append(out, h)
	}
	return out, nil
}

func (s *stubStore) ListFrom(_ context.Context, from time.Time) ([]Holiday, error) {
	var out []Holiday
	for _, h := range s.holidays {
		if h.IsActive && civil(h.EndDate) >= civil(from) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *stubStore) ActiveOn(_ context.Context, date time.Time) (*Holiday, error) {
	s.activeCalls++
	for _, h := range s.holidays {
		if h.IsActive && h.Contains(date) {
			return &h, nil
		}
	}
	return nil, nil
}

func (s *stubStore) Overlaps(_ context.Context, start, end time.Time, exclude uuid.UUID) (bool, error) {
	for id, h := range s.holidays {
		if id == exclude || !h.IsActive {
			continue
		}
		if civil(h.StartDate) <= civil(end) && civil(h.EndDate) >= civil(start) {
			return true, nil
		}
	}
	return false, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(store Store, cache Cache, today time.Time) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, cache, nil, log, func() time.Time { return today })
}

func TestHoliday_ProtectsMeals(t *testing.T) {
	var none *Holiday
	assert.False(t, none.ProtectsMeals())
	assert.True(t, (&Holiday{IsActive: true, ProtectMeals: true}).ProtectsMeals())
	assert.False(t, (&Holiday{IsActive: false, ProtectMeals: true}).ProtectsMeals())
	assert.False(t, (&Holiday{IsActive: true, ProtectMeals: false}).ProtectsMeals())
}

func TestHoliday_ContainsIsInclusive(t *testing.T) {
	h := Holiday{StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2)}
	ist := time.FixedZone("IST", 5*3600+1800)

	assert.True(t, h.Contains(day(2025, 3, 30)))
	assert.True(t, h.Contains(time.Date(2025, 4, 2, 23, 30, 0, 0, ist)))
	assert.False(t, h.Contains(day(2025, 4, 3)))
	assert.False(t, h.Contains(day(2025, 3, 29)))
}

func TestService_CurrentUsesCache(t *testing.T) {
	eid := Holiday{ID: uuid.New(), Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2), IsActive: true, ProtectMeals: true}
	store := newStubStore(eid)
	svc := newTestService(store, NewMemoryCache(0), day(2025, 3, 31))

	for i := 0; i < 3; i++ {
		h, err := svc.Current(context.Background())
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, "Eid", h.Name)
	}
	assert.Equal(t, 1, store.activeCalls)
}

func TestService_CurrentCachesAbsence(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, NewMemoryCache(0), day(2025, 5, 1))

	h, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, h)

	_, _ = svc.Current(context.Background())
	assert.Equal(t, 1, store.activeCalls)
}

func TestService_CreateInvalidatesCacheAndRejectsOverlap(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, NewMemoryCache(0), day(2025, 3, 31))
	ctx := context.Background()

	h, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, h)

	created, err := svc.Create(ctx, Params{
		Name: "  Eid  ", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2),
		IsActive: true, ProtectMeals: true, PopupOptions: []string{"Keep deliveries", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Eid", created.Name)
	assert.Equal(t, []string{"Keep deliveries"}, created.PopupOptions)

	h, err = svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, created.ID, h.ID)

	_, err = svc.Create(ctx, Params{Name: "Overlap", StartDate: day(2025, 4, 2), EndDate: day(2025, 4, 5), IsActive: true})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = svc.Create(ctx, Params{Name: "Inactive", StartDate: day(2025, 4, 2), EndDate: day(2025, 4, 5)})
	assert.NoError(t, err)
}

func TestService_UpdateExcludesItselfFromOverlap(t *testing.T) {
	eid := Holiday{ID: uuid.New(), Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2), IsActive: true}
	svc := newTestService(newStubStore(eid), nil, day(2025, 3, 1))

	updated, err := svc.Update(context.Background(), eid.ID, Params{
		Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 3), IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 4, 3), updated.EndDate)
}

func TestService_CreateRejectsInvertedRange(t *testing.T) {
	svc := newTestService(newStubStore(), nil, day(2025, 3, 1))
	_, err := svc.Create(context.Background(), Params{Name: "Bad", StartDate: day(2025, 4, 2), EndDate: day(2025, 4, 1)})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_MemoryCacheExpiresAcrossReplicas(t *testing.T) {
	store := newStubStore()
	today := day(2025, 3, 31)
	ctx := context.Background()

	clock := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	writer := newTestService(store, NewMemoryCache(5*time.Minute).WithClock(now), today)
	reader := newTestService(store, NewMemoryCache(5*time.Minute).WithClock(now), today)

	h, err := reader.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, h)

	_, err = writer.Create(ctx, Params{
		Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2),
		IsActive: true, ProtectMeals: true,
	})
	require.NoError(t, err)

	clock = clock.Add(4 * time.Minute)
	h, err = reader.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, h, "cached absence is served until the entry expires")

	clock = clock.Add(time.Minute)
	h, err = reader.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, h.ProtectsMeals())
	assert.Equal(t, 2, store.activeCalls)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	clock := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(0).WithClock(func() time.Time { return clock })
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "2025-03-31", nil))
	clock = clock.Add(48 * time.Hour)

	h, found, err := cache.Get(ctx, "2025-03-31")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, h)
}
