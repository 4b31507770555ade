package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beheryahmed1991/meal-subscription-service/internal/delivery"
	"github.com/beheryahmed1991/meal-subscription-service/internal/holiday"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/skip"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

func newTestRouter(t *testing.T, checks ...Checker) (*gin.Engine, *middleware.Authenticator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := middleware.NewAuthenticator("router-secret")
	policy := schedule.NewPolicy(time.UTC, schedule.DefaultCutoffHour, time.Now)

	router := NewRouter(Options{
		Log:           log,
		Auth:          auth,
		MealPlans:     mealplan.NewHandler(nil, log),
		Holidays:      holiday.NewHandler(nil, time.UTC, log),
		Subscriptions: subscription.NewHandler(nil, log, "/profile"),
		Skips:         skip.NewHandler(nil, log, "/profile"),
		Deliveries:    delivery.NewHandler(nil, policy, log),
		Checks:        checks,
		EventsState:   func() string { return "closed" },
	})
	return router, auth
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, Checker{Name: "database", Check: func(context.Context) error { return nil }})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Components["database"])
	assert.Equal(t, "closed", body.Components["events"])
}

func TestRouter_HealthDegraded(t *testing.T) {
	router, _ := newTestRouter(t, Checker{Name: "database", Check: func(context.Context) error { return errors.New("connection refused") }})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestRouter_CustomerRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/subscriptions"},
		{http.MethodPost, "/subscriptions/" + uuid.NewString() + "/skip"},
		{http.MethodGet, "/subscriptions/" + uuid.NewString() + "/upcoming"},
		{http.MethodGet, "/subscriptions/" + uuid.NewString() + "/meals"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, p.path)
	}
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	router, auth := newTestRouter(t)

	token, err := auth.Issue(uuid.New(), "USER", time.Hour)
	require.NoError(t, err)

	for _, path := range []string{"/admin/holidays", "/admin/deliveries", "/admin/subscriptions"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestRouter_FlashEndpointIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flash", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
