package mealplan

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the meal plan catalog.
type Handler struct {
	store Store
	log   *slog.Logger
}

func NewHandler(store Store, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// RegisterRoutes mounts the public catalog and the admin endpoints.
func (h *Handler) RegisterRoutes(public, admin gin.IRoutes) {
	public.GET("/meal-plans", h.list)
	public.GET("/meal-plans/:id", h.getByID)
	admin.POST("/meal-plans", h.create)
}

type createMealPlanRequest struct {
	Name              string `json:"name" binding:"required"`
	PriceWeekly       int    `json:"price_weekly" binding:"min=0"`
	PriceMonthly      int    `json:"price_monthly" binding:"min=0"`
	IncludesBreakfast bool   `json:"includes_breakfast"`
	IncludesLunch     bool   `json:"includes_lunch"`
	IncludesDinner    bool   `json:"includes_dinner"`
	IncludesSnacks    bool   `json:"includes_snacks"`
}

// list godoc
// @Summary List active meal plans
// @Tags meal-plans
// @Produce json
// @Success 200 {array} MealPlan
// @Router /meal-plans [get]
func (h *Handler) list(c *gin.Context) {
	plans, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error("list meal plans", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load meal plans"})
		return
	}
	if plans == nil {
		plans = []MealPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	plan, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal plan not found"})
			return
		}
		h.log.Error("get meal plan", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load meal plan"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// create godoc
// @Summary Create a meal plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} MealPlan
// @Failure 400 {object} map[string]string
// @Router /admin/meal-plans [post]
func (h *Handler) create(c *gin.Context) {
	var req createMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
		return
	}
	if !req.IncludesBreakfast && !req.IncludesLunch && !req.IncludesDinner && !req.IncludesSnacks {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a meal plan must include at least one meal"})
		return
	}

	plan, err := h.store.Create(c.Request.Context(), CreateParams{
		Name:              name,
		PriceWeekly:       req.PriceWeekly,
		PriceMonthly:      req.PriceMonthly,
		IncludesBreakfast: req.IncludesBreakfast,
		IncludesLunch:     req.IncludesLunch,
		IncludesDinner:    req.IncludesDinner,
		IncludesSnacks:    req.IncludesSnacks,
	})
	if err != nil {
		h.log.Error("create meal plan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create meal plan"})
		return
	}

	h.log.Info("meal plan created", "id", plan.ID, "meal_type", plan.MealType)
	c.JSON(http.StatusCreated, plan)
}
