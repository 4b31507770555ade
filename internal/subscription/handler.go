package subscription

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/flash"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Handler exposes HTTP handlers for subscription resources.
type Handler struct {
	svc        *Service
	log        *slog.Logger
	redirectTo string
}

func NewHandler(svc *Service, log *slog.Logger, redirectTo string) *Handler {
	return &Handler{svc: svc, log: log, redirectTo: redirectTo}
}

// RegisterRoutes mounts customer routes on user and back office routes on admin.
func (h *Handler) RegisterRoutes(user, admin gin.IRoutes) {
	user.GET("/subscriptions", h.listMine)
	user.GET("/subscriptions/:id", h.getMine)
	user.POST("/subscriptions/:id/pause", h.pause)
	user.POST("/subscriptions/:id/resume", h.resume)
	user.POST("/subscriptions/:id/cancel", h.cancel)
	user.POST("/subscriptions/:id/change-plan", h.changePlan)
	user.GET("/subscriptions/:id/plans/compare", h.comparePlans)

	admin.POST("/subscriptions", h.create)
	admin.GET("/subscriptions", h.listActive)
	admin.GET("/subscriptions/:id", h.getAny)
	admin.PUT("/subscriptions/:id/delivery-days", h.updateDeliveryDays)
}

// listMine godoc
// @Summary List the caller's subscriptions
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Subscription
// @Router /subscriptions [get]
func (h *Handler) listMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	subs, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list subscriptions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load subscriptions"})
		return
	}
	if subs == nil {
		subs = []Subscription{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *Handler) getMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	sub, err := h.svc.GetOwned(c.Request.Context(), userID, id)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("get subscription", "subscription_id", id, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, sub)
}

// pause godoc
// @Summary Pause a subscription
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 303 {string} string "redirect to the profile page"
// @Failure 409 {object} map[string][]flash.Message
// @Router /subscriptions/{id}/pause [post]
func (h *Handler) pause(c *gin.Context) {
	h.lifecycle(c, "paused", h.svc.Pause)
}

// resume godoc
// @Summary Resume a paused subscription
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 303 {string} string "redirect to the profile page"
// @Router /subscriptions/{id}/resume [post]
func (h *Handler) resume(c *gin.Context) {
	h.lifecycle(c, "resumed", h.svc.Resume)
}

// cancel godoc
// @Summary Cancel a subscription
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 303 {string} string "redirect to the profile page"
// @Router /subscriptions/{id}/cancel [post]
func (h *Handler) cancel(c *gin.Context) {
	h.lifecycle(c, "canceled", h.svc.Cancel)
}

func (h *Handler) lifecycle(c *gin.Context, verb string, action func(context.Context, uuid.UUID, uuid.UUID) (Subscription, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		flash.Respond(c, http.StatusUnauthorized, "/login", flash.Message{Level: flash.Error, Text: "Please sign in to manage your subscription."})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Error, Text: "Invalid subscription."})
		return
	}

	if _, err := action(c.Request.Context(), userID, id); err != nil {
		status, msg := StatusFor(err)
		level := flash.Error
		if errors.Is(err, ErrInvalidTransition) {
			level = flash.Warning
			msg = "Subscription cannot be " + verb + " in its current state."
		}
		if status == http.StatusInternalServerError {
			h.log.Error("subscription lifecycle", "subscription_id", id, "action", verb, "error", err)
		}
		flash.Respond(c, status, h.redirectTo, flash.Message{Level: level, Text: msg})
		return
	}

	flash.Respond(c, http.StatusOK, h.redirectTo, flash.Message{Level: flash.Success, Text: "Subscription " + verb + " successfully."})
}

// changePlan godoc
// @Summary Switch to another meal plan now or at the next billing period
// @Tags subscriptions
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param new_meal_plan_id formData string true "Meal plan ID"
// @Param effective_date formData string false "immediate or next_billing"
// @Success 303 {string} string "redirect to the profile page"
// @Failure 409 {object} map[string][]flash.Message
// @Router /subscriptions/{id}/change-plan [post]
func (h *Handler) changePlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		flash.Respond(c, http.StatusUnauthorized, "/login", flash.Message{Level: flash.Error, Text: "Please sign in to manage your subscription."})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Error, Text: "Invalid subscription."})
		return
	}
	planID, err := uuid.Parse(strings.TrimSpace(c.PostForm("new_meal_plan_id")))
	if err != nil {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Error, Text: "Please choose a meal plan."})
		return
	}
	timing := PlanTiming(c.DefaultPostForm("effective_date", string(ChangeNextBilling)))

	res, err := h.svc.ChangePlan(c.Request.Context(), userID, id, planID, timing)
	if err != nil {
		status, msg := StatusFor(err)
		level := flash.Error
		if errors.Is(err, ErrSamePlan) {
			level = flash.Info
		}
		if status == http.StatusInternalServerError {
			h.log.Error("change meal plan", "subscription_id", id, "meal_plan_id", planID, "error", err)
		}
		flash.Respond(c, status, h.redirectTo, flash.Message{Level: level, Text: msg})
		return
	}

	text := "Meal plan changed to " + res.Plan.Name + " immediately."
	if !res.Immediate {
		text = "Your meal plan will change to " + res.Plan.Name + " at the next billing period."
	}
	flash.Respond(c, http.StatusOK, h.redirectTo, flash.Message{Level: flash.Success, Text: text})
}

// comparePlans godoc
// @Summary Compare active meal plans against the current subscription price
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} PlanComparison
// @Router /subscriptions/{id}/plans/compare [get]
func (h *Handler) comparePlans(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	out, err := h.svc.ComparePlans(c.Request.Context(), userID, id)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("compare meal plans", "subscription_id", id, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, out)
}

type createSubscriptionRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	MealPlanID     string `json:"meal_plan_id" binding:"required"`
	Frequency      string `json:"frequency" binding:"required"`
	DeliveryDays   []int  `json:"delivery_days"`
	VegetarianDays []int  `json:"vegetarian_days"`
}

// create godoc
// @Summary Create a subscription for a customer
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Subscription
// @Failure 400 {object} map[string]string
// @Router /admin/subscriptions [post]
func (h *Handler) create(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	planID, err := uuid.Parse(req.MealPlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal_plan_id"})
		return
	}
	days, vegetarian, err := parseDaySets(req.DeliveryDays, req.VegetarianDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	freq := schedule.Frequency(strings.ToLower(strings.TrimSpace(req.Frequency)))
	sub, err := h.svc.Create(c.Request.Context(), userID, planID, freq, days, vegetarian)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("create subscription", "user_id", userID, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) listActive(c *gin.Context) {
	subs, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error("list active subscriptions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load subscriptions"})
		return
	}
	if subs == nil {
		subs = []Subscription{}
	}
	c.JSON(http.StatusOK, subs)
}

func (h *Handler) getAny(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	sub, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		status, msg := StatusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, sub)
}

type deliveryDaysRequest struct {
	DeliveryDays   []int `json:"delivery_days"`
	VegetarianDays []int `json:"vegetarian_days"`
}

// updateDeliveryDays godoc
// @Summary Change a subscription's delivery weekdays (0 = Monday)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} Subscription
// @Router /admin/subscriptions/{id}/delivery-days [put]
func (h *Handler) updateDeliveryDays(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req deliveryDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days, vegetarian, err := parseDaySets(req.DeliveryDays, req.VegetarianDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.svc.UpdateDeliveryDays(c.Request.Context(), id, days, vegetarian)
	if err != nil {
		status, msg := StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("update delivery days", "subscription_id", id, "error", err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	h.log.Info("delivery days updated", "subscription_id", id, "delivery_days", sub.DeliveryDays.String())
	c.JSON(http.StatusOK, sub)
}

func parseDaySets(delivery, vegetarian []int) (schedule.Weekdays, schedule.Weekdays, error) {
	days, err := schedule.NewWeekdays(delivery)
	if err != nil {
		return nil, nil, err
	}
	veg, err := schedule.NewWeekdays(vegetarian)
	if err != nil {
		return nil, nil, err
	}
	return days, veg, nil
}

// StatusFor maps subscription errors to an HTTP status and a customer facing message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Subscription not found."
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden, "You do not have permission to modify this subscription."
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "Subscription status does not allow this action."
	case errors.Is(err, ErrInvalidFrequency):
		return http.StatusBadRequest, "Frequency must be weekly or monthly."
	case errors.Is(err, ErrSamePlan):
		return http.StatusConflict, "You are already subscribed to this meal plan."
	case errors.Is(err, ErrInvalidTiming):
		return http.StatusBadRequest, "Choose to change the plan immediately or at the next billing period."
	case errors.Is(err, mealplan.ErrNotFound):
		return http.StatusBadRequest, "Meal plan not found or inactive."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}
