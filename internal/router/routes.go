package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/auth"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/config"
	"github.com/techiemaya-admin/lad-feature-apollo-leads/internal/handler"
	middlewarepkg "github.com/techiemaya-admin/lad-feature-apollo-leads/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Reveal  *handler.RevealHandler
	Search  *handler.SearchHandler
	Webhook *handler.WebhookHandler
	Admin   *handler.AdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	// The provider calls back with a shared-secret token instead of a JWT.
	if handlers.Webhook != nil {
		e.POST("/webhooks/apollo/phone", handlers.Webhook.PhoneDelivered)
	}

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/employees/search", handlers.Search.Search)

	revealLimiter := middlewarepkg.RevealRateLimiter(cfg.RateLimitReveal, "/reveal/email", "/reveal/phone")
	secured.POST("/reveal/email", handlers.Reveal.RevealEmail, revealLimiter)
	secured.POST("/reveal/phone", handlers.Reveal.RevealPhone, revealLimiter)

	if handlers.Admin != nil {
		admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
		admin.GET("/employees", handlers.Admin.ListEmployees)
		admin.DELETE("/employees/:person_id", handlers.Admin.DeleteEmployee)
	}
}
