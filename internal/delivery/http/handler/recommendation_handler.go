package handler

import (
	"errors"

	"jobfinder/internal/delivery/http/dto"
	"jobfinder/internal/delivery/http/middleware"
	"jobfinder/internal/pkg/response"
	"jobfinder/internal/repository"
	"jobfinder/internal/scheduler"
	"jobfinder/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// RunTrigger starts a background batch run.
type RunTrigger interface {
	Trigger() error
}

// RunStatus reports what this instance's scheduler is doing.
type RunStatus interface {
	Running() bool
	LastRun() (scheduler.RunSummary, bool)
}

type RecommendationHandler struct {
	query   usecase.RecommendationQueryUsecase
	trigger RunTrigger
	status  RunStatus
}

func NewRecommendationHandler(q usecase.RecommendationQueryUsecase, t RunTrigger, s RunStatus) *RecommendationHandler {
	return &RecommendationHandler{query: q, trigger: t, status: s}
}

// List answers GET /api/v1/recommendations for the authenticated seeker.
func (h *RecommendationHandler) List(c fiber.Ctx) error {
	items, err := h.query.GetRecommendations(c.Context(), middleware.UserID(c))
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "", dto.NewRecommendationListResponse(items))
}

// Trigger answers POST /api/v1/recommendations. The run itself is async.
func (h *RecommendationHandler) Trigger(c fiber.Ctx) error {
	if h.trigger == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Scheduler not configured", nil, nil)
	}
	if err := h.trigger.Trigger(); err != nil {
		return mapRecommendationUsecaseError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "Recommendation run started", nil)
}

// Status answers GET /api/v1/recommendations/run.
func (h *RecommendationHandler) Status(c fiber.Ctx) error {
	if h.status == nil {
		return response.Success(c, fiber.StatusOK, "", dto.NewRunStatusResponse(false, scheduler.RunSummary{}, false))
	}
	last, ok := h.status.LastRun()
	return response.Success(c, fiber.StatusOK, "", dto.NewRunStatusResponse(h.status.Running(), last, ok))
}

func mapRecommendationUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, scheduler.ErrRunInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "Recommendation run already in progress", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "Internal server error", nil, err)
	}
}

// RegisterRoutes expects r to already carry the auth middleware.
func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	g := r.Group("/recommendations")
	g.Post("", h.Trigger)
	g.Get("/run", h.Status)
	g.Get("", middleware.RequireRole(repository.RoleJobSeeker), h.List)
}
