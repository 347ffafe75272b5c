package ws

import (
	"net/http"

	"jobfinder/internal/delivery/http/middleware"
	"jobfinder/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewHandler(hub *Hub, log *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger.OrNop(log).Named("ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleRecommendationsWS upgrades an authenticated request and subscribes
// it to the caller's recommendation events.
func (h *Handler) HandleRecommendationsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	seekerID := middleware.UserID(c)
	if seekerID == uuid.Nil {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeSeeker(w, r, seekerID)
	})(c)
}

func (h *Handler) ServeSeeker(w http.ResponseWriter, r *http.Request, seekerID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.String("seeker_id", seekerID.String()), zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, seekerID)
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
