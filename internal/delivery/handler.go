package delivery

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

// Handler exposes the kitchen's delivery board and the customer meal counter.
type Handler struct {
	svc    *Service
	policy *schedule.Policy
	log    *slog.Logger
}

func NewHandler(svc *Service, policy *schedule.Policy, log *slog.Logger) *Handler {
	return &Handler{svc: svc, policy: policy, log: log}
}

func (h *Handler) RegisterRoutes(user, admin gin.IRoutes) {
	user.GET("/subscriptions/:id/meals", h.mealStatus)
	user.GET("/subscriptions/:id/history", h.history)

	admin.GET("/deliveries", h.list)
	admin.GET("/deliveries/summary", h.summary)
	admin.PUT("/deliveries/:id/status", h.updateStatus)
}

func (h *Handler) dateParam(c *gin.Context) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		return h.policy.Today(), true
	}
	d, err := schedule.ParseDate(raw, h.policy.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return d, true
}

// list godoc
// @Summary Deliveries for a date
// @Description Creates pending records for scheduled, unskipped subscriptions on first access.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} Delivery
// @Router /admin/deliveries [get]
func (h *Handler) list(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	out, err := h.svc.ForDate(c.Request.Context(), date)
	if err != nil {
		h.log.Error("list deliveries", "date", date.Format(schedule.DateLayout), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load deliveries"})
		return
	}
	if out == nil {
		out = []Delivery{}
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) summary(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	counts, err := h.svc.Summary(c.Request.Context(), date)
	if err != nil {
		h.log.Error("delivery summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format(schedule.DateLayout), "counts": counts})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// updateStatus godoc
// @Summary Update a delivery's status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Delivery ID"
// @Success 200 {object} Delivery
// @Router /admin/deliveries/{id}/status [put]
func (h *Handler) updateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.svc.UpdateStatus(c.Request.Context(), id, Status(strings.ToLower(req.Status)), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.log.Error("update delivery status", "delivery_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update delivery"})
		}
		return
	}
	c.JSON(http.StatusOK, d)
}

// mealStatus godoc
// @Summary Meals promised, delivered and remaining in the current period
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} MealStatus
// @Router /subscriptions/{id}/meals [get]
func (h *Handler) mealStatus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	out, err := h.svc.MealStatus(c.Request.Context(), userID, subID)
	if err != nil {
		status, msg := subscription.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("meal status", "subscription_id", subID, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, out)
}

// history godoc
// @Summary Deliveries and skips of a subscription, newest first
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} History
// @Router /subscriptions/{id}/history [get]
func (h *Handler) history(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	out, err := h.svc.History(c.Request.Context(), userID, subID)
	if err != nil {
		status, msg := subscription.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("delivery history", "subscription_id", subID, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, out)
}
