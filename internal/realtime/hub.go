package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/facilitas/chamado-service/internal/events"
)

// Hub fans domain events out to connected websocket clients so dashboards
// refresh without polling.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	conns   map[*websocket.Conn]chan []byte
	closing bool
}

// NewHub creates the hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]chan []byte),
	}
}

// RegisterHandlers subscribes the hub to the ticket event stream.
func (h *Hub) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketExpired,
		events.EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, h.broadcast)
	}
}

func (h *Hub) broadcast(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("event encode failed", zap.Error(err))
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, outbox := range h.conns {
		select {
		case outbox <- payload:
		default:
			// Slow consumer: drop the frame rather than block the publisher.
			h.logger.Debug("dropping frame for slow websocket client",
				zap.String("remote", conn.RemoteAddr().String()))
		}
	}
	return nil
}

// Serve pumps events to one websocket connection until it closes. Intended
// as the handler passed to websocket.New.
func (h *Hub) Serve(conn *websocket.Conn) {
	outbox := h.attach(conn)
	defer h.detach(conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Reads are discarded; the socket is broadcast-only. The read loop
		// exists to observe the close handshake.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case payload, ok := <-outbox:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// Shutdown closes every active connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closing = true
	for conn, outbox := range h.conns {
		close(outbox)
		_ = conn.Close()
		delete(h.conns, conn)
	}
}

func (h *Hub) attach(conn *websocket.Conn) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	outbox := make(chan []byte, 16)
	if h.closing {
		close(outbox)
		return outbox
	}
	h.conns[conn] = outbox
	return outbox
}

func (h *Hub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if outbox, ok := h.conns[conn]; ok {
		close(outbox)
		delete(h.conns, conn)
	}
	_ = conn.Close()
}
