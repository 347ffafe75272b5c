package app

import (
	"context"
	"fmt"
	"strings"

	"jobfinder/internal/config"
	"jobfinder/internal/delivery/http/handler"
	"jobfinder/internal/delivery/http/middleware"
	"jobfinder/internal/delivery/http/routes"
	"jobfinder/internal/pkg/jwt"
	"jobfinder/internal/ws"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP surface on top of an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, refreshes the index and starts the
// background workers. The returned cleanup stops them in reverse order.
func Bootstrap(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, log, ContainerOptions{Realtime: true})
	if err != nil {
		return nil, nil, err
	}
	if err := c.refreshBeforeRun(ctx); err != nil {
		c.Logger.Warn("job index not refreshed, relevance may be stale until the next run", zap.Error(err))
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	go c.Hub.Run(hubCtx)

	if err := c.Scheduler.Start(); err != nil {
		stopHub()
		_ = c.Close()
		return nil, nil, err
	}

	cleanup := func() error {
		c.Scheduler.Stop()
		stopHub()
		return c.Close()
	}
	return New(c), cleanup, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger, c.Metrics)
	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(c.Config.JWT.AccessSecret, 0)

	routes.NewRegistry(routes.Deps{
		Health:          handler.NewHealthHandler(c.DB),
		Recommendations: handler.NewRecommendationHandler(c.Query, c.Scheduler, c.Scheduler),
		WS:              ws.NewHandler(c.Hub, c.Logger),
		Metrics:         c.Metrics.Handler(),
		Auth:            middleware.NewAuthMiddleware(jwtSvc),
	}).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
