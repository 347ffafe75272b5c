package routes

import (
	"jobfinder/internal/delivery/http/handler"
	"jobfinder/internal/delivery/http/middleware"
	v1 "jobfinder/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, auth *middleware.AuthMiddleware, recs *handler.RecommendationHandler) {
	if r == nil {
		return
	}

	v1.Register(r, auth, recs)
}
