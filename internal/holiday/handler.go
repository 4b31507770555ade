package holiday

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beheryahmed1991/meal-subscription-service/internal/schedule"
)

// Handler exposes the current-holiday popup and holiday administration.
type Handler struct {
	svc *Service
	loc *time.Location
	log *slog.Logger
}

func NewHandler(svc *Service, loc *time.Location, log *slog.Logger) *Handler {
	return &Handler{svc: svc, loc: loc, log: log}
}

func (h *Handler) RegisterRoutes(public, admin gin.IRoutes) {
	public.GET("/holidays/current", h.current)
	public.GET("/holidays/upcoming", h.upcoming)

	admin.GET("/holidays", h.list)
	admin.POST("/holidays", h.create)
	admin.GET("/holidays/:id", h.get)
	admin.PUT("/holidays/:id", h.update)
	admin.DELETE("/holidays/:id", h.delete)
}

type currentResponse struct {
	Holiday   *Holiday `json:"holiday"`
	ShowPopup bool     `json:"show_popup"`
}

// current godoc
// @Summary Current holiday and popup data
// @Tags holidays
// @Produce json
// @Success 200 {object} currentResponse
// @Router /holidays/current [get]
func (h *Handler) current(c *gin.Context) {
	hol, err := h.svc.Current(c.Request.Context())
	if err != nil {
		h.log.Error("current holiday", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load holiday"})
		return
	}
	c.JSON(http.StatusOK, currentResponse{
		Holiday:   hol,
		ShowPopup: hol != nil && hol.ShowPopup,
	})
}

func (h *Handler) upcoming(c *gin.Context) {
	h.respondList(c, h.svc.Upcoming)
}

// list godoc
// @Summary List all holidays
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Holiday
// @Router /admin/holidays [get]
func (h *Handler) list(c *gin.Context) {
	h.respondList(c, h.svc.List)
}

func (h *Handler) respondList(c *gin.Context, load func(context.Context) ([]Holiday, error)) {
	holidays, err := load(c.Request.Context())
	if err != nil {
		h.log.Error("list holidays", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load holidays"})
		return
	}
	if holidays == nil {
		holidays = []Holiday{}
	}
	c.JSON(http.StatusOK, holidays)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	hol, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get holiday", err)
		return
	}
	c.JSON(http.StatusOK, hol)
}

type holidayRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	IsActive     *bool    `json:"is_active"`
	ProtectMeals *bool    `json:"protect_meals"`
	ShowPopup    *bool    `json:"show_popup"`
	PopupMessage string   `json:"popup_message"`
	PopupOptions []string `json:"popup_options"`
}

func (r holidayRequest) params(loc *time.Location) (Params, error) {
	start, err := schedule.ParseDate(r.StartDate, loc)
	if err != nil {
		return Params{}, err
	}
	end, err := schedule.ParseDate(r.EndDate, loc)
	if err != nil {
		return Params{}, err
	}
	return Params{
		Name:         r.Name,
		Description:  r.Description,
		StartDate:    start,
		EndDate:      end,
		IsActive:     boolOr(r.IsActive, true),
		ProtectMeals: boolOr(r.ProtectMeals, true),
		ShowPopup:    boolOr(r.ShowPopup, true),
		PopupMessage: r.PopupMessage,
		PopupOptions: r.PopupOptions,
	}, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// create godoc
// @Summary Create a holiday
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Holiday
// @Failure 409 {object} map[string]string
// @Router /admin/holidays [post]
func (h *Handler) create(c *gin.Context) {
	params, ok := h.bind(c)
	if !ok {
		return
	}
	hol, err := h.svc.Create(c.Request.Context(), params)
	if err != nil {
		h.fail(c, "create holiday", err)
		return
	}
	c.JSON(http.StatusCreated, hol)
}

// update godoc
// @Summary Update a holiday
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Holiday ID"
// @Success 200 {object} Holiday
// @Router /admin/holidays/{id} [put]
func (h *Handler) update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	params, ok := h.bind(c)
	if !ok {
		return
	}
	hol, err := h.svc.Update(c.Request.Context(), id, params)
	if err != nil {
		h.fail(c, "update holiday", err)
		return
	}
	c.JSON(http.StatusOK, hol)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete holiday", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) bind(c *gin.Context) (Params, bool) {
	var req holidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return Params{}, false
	}
	params, err := req.params(h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be in YYYY-MM-DD format"})
		return Params{}, false
	}
	return params, true
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
