package mealplan

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	created CreateParams
	plans   []MealPlan
}

func (s *stubStore) Create(_ context.Context, params CreateParams) (MealPlan, error) {
	s.created = params
	return MealPlan{ID: uuid.New(), Name: params.Name, MealType: params.MealType()}, nil
}

func (s *stubStore) GetByID(context.Context, uuid.UUID) (MealPlan, error) {
	return MealPlan{}, ErrNotFound
}

func (s *stubStore) ListActive(context.Context) ([]MealPlan, error) {
	return s.plans, nil
}

func newRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.RegisterRoutes(router, router.Group("/admin"))
	return router
}

func TestHandler_CreateDerivesMealType(t *testing.T) {
	store := &stubStore{}
	router := newRouter(store)

	body := `{"name":"Dinner Only","price_weekly":3000,"price_monthly":11000,"includes_dinner":true}`
	req := httptest.NewRequest(http.MethodPost, "/admin/meal-plans", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var plan MealPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "dinner", string(plan.MealType))
	assert.Equal(t, "Dinner Only", store.created.Name)
}

func TestHandler_CreateRejectsEmptyPlan(t *testing.T) {
	router := newRouter(&stubStore{})

	body := `{"name":"Nothing","price_weekly":0,"price_monthly":0}`
	req := httptest.NewRequest(http.MethodPost, "/admin/meal-plans", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	router := newRouter(&stubStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meal-plans", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_GetByIDNotFound(t *testing.T) {
	router := newRouter(&stubStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meal-plans/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
