package routes

import (
	"net/http"

	"jobfinder/internal/delivery/http/handler"
	"jobfinder/internal/delivery/http/middleware"
	"jobfinder/internal/repository"
	"jobfinder/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	health          *handler.HealthHandler
	recommendations *handler.RecommendationHandler
	ws              *ws.Handler
	metrics         http.Handler
	auth            *middleware.AuthMiddleware
}

type Deps struct {
	Health          *handler.HealthHandler
	Recommendations *handler.RecommendationHandler
	WS              *ws.Handler
	Metrics         http.Handler
	Auth            *middleware.AuthMiddleware
}

func NewRegistry(d Deps) *Registry {
	return &Registry{
		health:          d.Health,
		recommendations: d.Recommendations,
		ws:              d.WS,
		metrics:         d.Metrics,
		auth:            d.Auth,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.metrics))
	}
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws == nil || r.auth == nil {
		return
	}
	seekers := app.Group("/ws", r.auth.Middleware(), middleware.RequireRole(repository.RoleJobSeeker))
	seekers.Get("/recommendations", r.ws.HandleRecommendationsWS)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.auth, r.recommendations)
}
