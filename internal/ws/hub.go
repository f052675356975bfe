package ws

import (
	"sync"

	"go.uber.org/zap"

	"artmarket/internal/domain"
)

// Event es el sobre que viaja por el canal realtime.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub mantiene las conexiones websocket activas indexadas por usuario. Un
// usuario puede tener varias conexiones (multi dispositivo).
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Send empuja un evento a todas las conexiones del usuario. La entrega es
// best effort: una cola llena descarta el evento en vez de bloquear.
func (h *Hub) Send(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("ws send queue full, dropping event",
				zap.String("user_id", userID),
				zap.String("type", ev.Type),
			)
		}
	}
}

// Connections devuelve cuántas conexiones activas tiene el usuario.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// NotifyNewMessage implementa service.Notifier: avisa al receptor.
func (h *Hub) NotifyNewMessage(msg domain.Message) {
	h.Send(msg.ReceiverID, Event{Type: "message.new", Payload: msg})
}

// NotifyRead implementa service.Notifier: el read receipt va al emisor
// original de los mensajes leídos.
func (h *Hub) NotifyRead(senderID, readerID string, count int64) {
	h.Send(senderID, Event{
		Type: "messages.read",
		Payload: map[string]any{
			"reader_id": readerID,
			"count":     count,
		},
	})
}
