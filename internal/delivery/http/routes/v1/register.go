package v1

import (
	"jobfinder/internal/delivery/http/handler"
	"jobfinder/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, auth *middleware.AuthMiddleware, recs *handler.RecommendationHandler) {
	if r == nil || auth == nil {
		return
	}

	protected := r.Group("", auth.Middleware())
	RegisterRecommendations(protected, recs)
}
