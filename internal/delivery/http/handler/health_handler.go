package handler

import (
	"context"
	"time"

	"jobfinder/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// Pinger is satisfied by the Postgres pool and the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

func (h *HealthHandler) Check(c fiber.Ctx) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "", fiber.Map{"database": "down"})
		}
	}
	return response.Success(c, fiber.StatusOK, "", fiber.Map{"database": "up"})
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Check)
}
