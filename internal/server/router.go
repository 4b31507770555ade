package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/beheryahmed1991/meal-subscription-service/docs"
	"github.com/beheryahmed1991/meal-subscription-service/internal/delivery"
	"github.com/beheryahmed1991/meal-subscription-service/internal/flash"
	"github.com/beheryahmed1991/meal-subscription-service/internal/holiday"
	"github.com/beheryahmed1991/meal-subscription-service/internal/mealplan"
	"github.com/beheryahmed1991/meal-subscription-service/internal/middleware"
	"github.com/beheryahmed1991/meal-subscription-service/internal/skip"
	"github.com/beheryahmed1991/meal-subscription-service/internal/subscription"
)

const healthTimeout = 2 * time.Second

// Checker is a named readiness probe, e.g. the database ping.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options carries everything the router mounts.
type Options struct {
	Log         *slog.Logger
	ClientURL   string
	SwaggerHost string
	Auth        *middleware.Authenticator

	MealPlans     *mealplan.Handler
	Holidays      *holiday.Handler
	Subscriptions *subscription.Handler
	Skips         *skip.Handler
	Deliveries    *delivery.Handler

	Checks []Checker
	// EventsState reports the broker circuit state; nil when events are only logged.
	EventsState func() string
}

// NewRouter builds the gin engine with public, customer and admin route groups.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(opts.Log), middleware.RequestLogger(opts.Log))
	if opts.ClientURL != "" {
		router.Use(middleware.CORS(opts.ClientURL))
	}

	if opts.SwaggerHost != "" {
		docs.SwaggerInfo.Host = opts.SwaggerHost
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", health(opts.Checks, opts.EventsState))
	router.GET("/flash", flash.Handler)

	public := router.Group("/")
	user := router.Group("/", opts.Auth.Auth())
	admin := router.Group("/admin", opts.Auth.Auth(), middleware.AdminOnly())

	opts.MealPlans.RegisterRoutes(public, admin)
	opts.Holidays.RegisterRoutes(public, admin)
	opts.Subscriptions.RegisterRoutes(user, admin)
	opts.Skips.RegisterRoutes(user)
	opts.Deliveries.RegisterRoutes(user, admin)

	return router
}

func health(checks []Checker, eventsState func() string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[check.Name] = err.Error()
				continue
			}
			components[check.Name] = "ok"
		}
		if eventsState != nil {
			components["events"] = eventsState()
		}

		body := gin.H{"status": "ok", "components": components}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
