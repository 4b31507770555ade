package holiday

import (
	"bytes"
	"encoding/json"
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
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(svc, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.RegisterRoutes(router, router.Group("/admin"))
	return router
}

func TestHandler_CurrentNoHoliday(t *testing.T) {
	router := newRouter(newTestService(newStubStore(), nil, day(2025, 5, 1)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/holidays/current", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"holiday":null,"show_popup":false}`, rec.Body.String())
}

func TestHandler_CurrentWithPopup(t *testing.T) {
	eid := Holiday{ID: uuid.New(), Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2),
		IsActive: true, ProtectMeals: true, ShowPopup: true}
	router := newRouter(newTestService(newStubStore(eid), nil, day(2025, 4, 1)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/holidays/current", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body currentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.ShowPopup)
	require.NotNil(t, body.Holiday)
	assert.Equal(t, "Eid", body.Holiday.Name)
}

func TestHandler_CreateOverlapIsConflict(t *testing.T) {
	eid := Holiday{ID: uuid.New(), Name: "Eid", StartDate: day(2025, 3, 30), EndDate: day(2025, 4, 2), IsActive: true}
	router := newRouter(newTestService(newStubStore(eid), nil, day(2025, 3, 1)))

	body := `{"name":"Spring","start_date":"2025-04-01","end_date":"2025-04-04"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/holidays", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_CreateBadDate(t *testing.T) {
	router := newRouter(newTestService(newStubStore(), nil, day(2025, 3, 1)))

	body := `{"name":"Spring","start_date":"04/01/2025","end_date":"2025-04-04"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/holidays", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
