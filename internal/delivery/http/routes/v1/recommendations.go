package v1

import (
	"jobfinder/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterRecommendations(r fiber.Router, h *handler.RecommendationHandler) {
	if r == nil {
		return
	}
	if h == nil {
		return
	}

	h.RegisterRoutes(r)
}
