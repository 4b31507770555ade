package skip

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/flash"
	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
)

const (
	flashDateLayout   = "Monday, January 02"
	flashCutoffLayout = "Jan 2 at 3:04 PM"
	maxListedFailures = 3
)

// Handler serves the skip forms on the profile page and their JSON companions.
type Handler struct {
	svc        *Service
	log        *slog.Logger
	redirectTo string
}

func NewHandler(svc *Service, log *slog.Logger, redirectTo string) *Handler {
	return &Handler{svc: svc, log: log, redirectTo: redirectTo}
}

func (h *Handler) RegisterRoutes(user gin.IRoutes) {
	user.POST("/subscriptions/:id/skip", h.skip)
	user.POST("/subscriptions/:id/unskip", h.unskip)
	user.POST("/subscriptions/:id/bulk-skip", h.bulkSkip)
	user.GET("/subscriptions/:id/upcoming", h.upcoming)
	user.GET("/subscriptions/:id/skips", h.history)
}

func (h *Handler) target(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		flash.Respond(c, http.StatusUnauthorized, "/login", flash.Message{Level: flash.Error, Text: "Please sign in to manage deliveries."})
		return uuid.Nil, uuid.Nil, false
	}
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Error, Text: "Invalid subscription."})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, subID, true
}

// skip godoc
// @Summary Skip one delivery
// @Tags deliveries
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param delivery_date formData string true "Delivery date (YYYY-MM-DD)"
// @Success 303 {string} string "redirect to the profile page"
// @Failure 409 {object} map[string][]flash.Message
// @Failure 422 {object} map[string][]flash.Message
// @Router /subscriptions/{id}/skip [post]
func (h *Handler) skip(c *gin.Context) {
	userID, subID, ok := h.target(c)
	if !ok {
		return
	}

	date, err := h.svc.ParseDate(c.PostForm("delivery_date"))
	if err != nil {
		h.respondErr(c, subID, err, time.Time{})
		return
	}

	res, err := h.svc.Skip(c.Request.Context(), userID, subID, date)
	if err != nil {
		h.respondErr(c, subID, err, res.Cutoff)
		return
	}

	msg := fmt.Sprintf("%s delivery for %s has been skipped.", res.Record.MealType.Label(), date.Format(flashDateLayout))
	msgs := []flash.Message{{Level: flash.Success, Text: msg}}
	if res.Record.CompensationApplied {
		msgs = append(msgs, flash.Message{Level: flash.Info, Text: res.Record.CompensationDetails + "."})
	}
	flash.Respond(c, http.StatusOK, h.redirectTo, msgs...)
}

// unskip godoc
// @Summary Restore a skipped delivery
// @Tags deliveries
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param delivery_date formData string true "Delivery date (YYYY-MM-DD)"
// @Success 303 {string} string "redirect to the profile page"
// @Router /subscriptions/{id}/unskip [post]
func (h *Handler) unskip(c *gin.Context) {
	userID, subID, ok := h.target(c)
	if !ok {
		return
	}

	date, err := h.svc.ParseDate(c.PostForm("delivery_date"))
	if err != nil {
		h.respondErr(c, subID, err, time.Time{})
		return
	}

	res, err := h.svc.Unskip(c.Request.Context(), userID, subID, date)
	if err != nil {
		h.respondErr(c, subID, err, res.Cutoff)
		return
	}
	rec := res.Record

	msg := fmt.Sprintf("Delivery for %s has been restored.", date.Format(flashDateLayout))
	if rec.CompensationApplied {
		msg = fmt.Sprintf("Delivery for %s has been restored and the %d day extension removed.", date.Format(flashDateLayout), rec.CompensationDays)
	}
	flash.Respond(c, http.StatusOK, h.redirectTo, flash.Message{Level: flash.Success, Text: msg})
}

// bulkSkip godoc
// @Summary Skip several deliveries
// @Tags deliveries
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param delivery_dates formData string true "JSON array of YYYY-MM-DD dates"
// @Success 303 {string} string "redirect to the profile page"
// @Router /subscriptions/{id}/bulk-skip [post]
func (h *Handler) bulkSkip(c *gin.Context) {
	userID, subID, ok := h.target(c)
	if !ok {
		return
	}

	var dates []string
	if err := json.Unmarshal([]byte(c.PostForm("delivery_dates")), &dates); err != nil {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Error, Text: "Invalid list of delivery dates."})
		return
	}
	if len(dates) == 0 {
		flash.Respond(c, http.StatusBadRequest, h.redirectTo, flash.Message{Level: flash.Warning, Text: "No delivery dates selected."})
		return
	}

	res, err := h.svc.BulkSkip(c.Request.Context(), userID, subID, dates)
	if err != nil {
		h.respondErr(c, subID, err, time.Time{})
		return
	}

	status, msgs := bulkMessages(res)
	if flash.WantsJSON(c) {
		c.JSON(status, gin.H{"messages": msgs, "succeeded": res.Succeeded, "failed": res.Failed})
		return
	}
	flash.Respond(c, status, h.redirectTo, msgs...)
}

func bulkMessages(res BulkResult) (int, []flash.Message) {
	var msgs []flash.Message
	if n := len(res.Succeeded); n > 0 {
		msgs = append(msgs, flash.Message{Level: flash.Success, Text: fmt.Sprintf("Successfully skipped %d %s.", n, plural(n, "delivery", "deliveries"))})
	}

	if n := len(res.Failed); n > 0 {
		listed := make([]string, 0, maxListedFailures)
		for i, f := range res.Failed {
			if i == maxListedFailures {
				break
			}
			listed = append(listed, fmt.Sprintf("%s: %s", f.Date, f.Reason))
		}
		text := fmt.Sprintf("%d %s could not be skipped: %s", n, plural(n, "delivery", "deliveries"), strings.Join(listed, "; "))
		if n > maxListedFailures {
			text += fmt.Sprintf(" and %d more", n-maxListedFailures)
		}
		level := flash.Warning
		if len(res.Succeeded) == 0 {
			level = flash.Error
		}
		msgs = append(msgs, flash.Message{Level: level, Text: text + "."})
	}

	if len(res.Succeeded) == 0 {
		return http.StatusUnprocessableEntity, msgs
	}
	return http.StatusOK, msgs
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// upcoming godoc
// @Summary Upcoming deliveries with skip state
// @Tags deliveries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {array} Upcoming
// @Router /subscriptions/{id}/upcoming [get]
func (h *Handler) upcoming(c *gin.Context) {
	userID, subID, ok := h.jsonTarget(c)
	if !ok {
		return
	}
	out, err := h.svc.Upcoming(c.Request.Context(), userID, subID)
	if err != nil {
		h.jsonErr(c, subID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveries": out})
}

// history godoc
// @Summary Skip history
// @Tags deliveries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {array} Record
// @Router /subscriptions/{id}/skips [get]
func (h *Handler) history(c *gin.Context) {
	userID, subID, ok := h.jsonTarget(c)
	if !ok {
		return
	}
	recs, err := h.svc.History(c.Request.Context(), userID, subID)
	if err != nil {
		h.jsonErr(c, subID, err)
		return
	}
	if recs == nil {
		recs = []Record{}
	}
	c.JSON(http.StatusOK, gin.H{"skips": recs})
}

func (h *Handler) jsonTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, uuid.Nil, false
	}
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, subID, true
}

func (h *Handler) jsonErr(c *gin.Context, subID uuid.UUID, err error) {
	status, msg := Classify(err, time.Time{})
	if status == http.StatusInternalServerError {
		h.log.Error("skip request failed", "subscription_id", subID, "error", err)
	}
	c.JSON(status, gin.H{"error": msg.Text})
}

func (h *Handler) respondErr(c *gin.Context, subID uuid.UUID, err error, cutoff time.Time) {
	status, msg := Classify(err, cutoff)
	if status == http.StatusInternalServerError {
		h.log.Error("skip request failed", "subscription_id", subID, "error", err)
	}
	flash.Respond(c, status, h.redirectTo, msg)
}

// Classify maps a skip ledger error to an HTTP status and a flash message.
func Classify(err error, cutoff time.Time) (int, flash.Message) {
	switch {
	case errors.Is(err, ErrInvalidDateFormat):
		return http.StatusBadRequest, flash.Message{Level: flash.Error, Text: "Invalid date format. Please use YYYY-MM-DD."}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, flash.Message{Level: flash.Error, Text: "Subscription not found."}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden, flash.Message{Level: flash.Error, Text: "You do not have permission to modify this subscription."}
	case errors.Is(err, ErrAlreadySkipped):
		return http.StatusConflict, flash.Message{Level: flash.Warning, Text: "This delivery has already been skipped."}
	case errors.Is(err, ErrNotSkipped):
		return http.StatusConflict, flash.Message{Level: flash.Warning, Text: "This delivery is not skipped."}
	case errors.Is(err, ErrHolidayProtected):
		return http.StatusUnprocessableEntity, flash.Message{Level: flash.Warning, Text: "Deliveries cannot be changed while the current holiday protects meals."}
	case errors.Is(err, ErrPastDeliveryDate):
		return http.StatusUnprocessableEntity, flash.Message{Level: flash.Error, Text: "Deliveries in the past cannot be changed."}
	case errors.Is(err, ErrCutoffPassed):
		text := "The cutoff for this delivery has passed."
		if !cutoff.IsZero() {
			text = fmt.Sprintf("The cutoff for this delivery has passed (%s).", cutoff.Format(flashCutoffLayout))
		}
		return http.StatusUnprocessableEntity, flash.Message{Level: flash.Error, Text: text}
	default:
		return http.StatusInternalServerError, flash.Message{Level: flash.Error, Text: "We could not save your change. Please try again."}
	}
}
