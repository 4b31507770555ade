package delivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

func newRouter(svc *Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetUser(c, userID, "USER")
		c.Next()
	})
	policy := schedule.NewPolicy(time.UTC, 19, func() time.Time { return now })
	NewHandler(svc, policy, svc.log).RegisterRoutes(router, router.Group("/admin"))
	return router
}

func TestHandler_History(t *testing.T) {
	sub, store, skips := historyFixture()
	svc := newTestService(store, stubSubs{subs: []subscription.Subscription{sub}}, skips)

	rec := httptest.NewRecorder()
	newRouter(svc, sub.UserID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions/"+sub.ID.String()+"/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out History
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.TotalDeliveries)
	assert.Equal(t, 2, out.TotalSkipped)
	require.Len(t, out.Entries, 4)
	assert.Equal(t, "2025-01-13", out.Entries[0].Date)
}

func TestHandler_HistoryForeignSubscription(t *testing.T) {
	sub, store, skips := historyFixture()
	svc := newTestService(store, stubSubs{subs: []subscription.Subscription{sub}}, skips)

	rec := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions/"+sub.ID.String()+"/history", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_HistoryInvalidID(t *testing.T) {
	svc := newTestService(&stubStore{}, stubSubs{}, stubSkips{})

	rec := httptest.NewRecorder()
	newRouter(svc, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions/nope/history", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
