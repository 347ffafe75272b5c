package ws

import (
	"context"
	"sync"

	"jobfinder/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type envelope struct {
	seekerID uuid.UUID
	payload  []byte
}

// Hub fans messages out to the websocket clients of one seeker.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	publish    chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		publish:    make(chan envelope, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger.OrNop(log).Named("ws"),
	}
}

// Run serves registrations and deliveries until ctx ends, then closes every
// client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.mutex.Unlock()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.seekerID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.seekerID] = set
			}
			set[client] = struct{}{}
			h.mutex.Unlock()
			h.logger.Debug("client connected", zap.String("seeker_id", client.seekerID.String()))

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.publish:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.seekerID]))
			for c := range h.clients[msg.seekerID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- msg.payload:
				default:
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	if client == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set, ok := h.clients[client.seekerID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.seekerID)
	}
	h.logger.Debug("client disconnected", zap.String("seeker_id", client.seekerID.String()))
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues payload for the seeker's clients. It never blocks; a full
// queue drops the message.
func (h *Hub) Publish(seekerID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.publish <- envelope{seekerID: seekerID, payload: payload}:
	default:
		h.logger.Warn("publish dropped, buffer full", zap.String("seeker_id", seekerID.String()))
	}
}

func (h *Hub) ClientCount(seekerID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[seekerID])
}
