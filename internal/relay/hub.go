package relay

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
	"darkflow/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Hub fans accepted feed events out to connected browsers over
// WebSocket and SSE. It implements the event sink consumed by the
// live pipeline.
type Hub struct {
	log     *logger.Logger
	metrics domrepo.Metrics

	mu       sync.Mutex
	wsConns  map[*websocket.Conn]bool
	sseConns map[chan []byte]bool
	upgrader websocket.Upgrader
}

// NewHub creates an empty relay hub.
func NewHub(log *logger.Logger, metrics domrepo.Metrics) *Hub {
	return &Hub{
		log:      log,
		metrics:  metrics,
		wsConns:  make(map[*websocket.Conn]bool),
		sseConns: make(map[chan []byte]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes exposes the live endpoints browsers subscribe to.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/live/ws", h.HandleWebSocket)
	e.GET("/live/sse", h.HandleSSE)
}

type envelope struct {
	Type  string            `json:"type"`
	Event *models.FlowEvent `json:"event"`
}

// Publish broadcasts one event to every connected client.
func (h *Hub) Publish(ev *models.FlowEvent) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(envelope{Type: ev.Type, Event: ev})
	if err != nil {
		h.log.Error("relay marshal failed", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.wsConns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.wsConns, conn)
		}
	}
	for ch := range h.sseConns {
		select {
		case ch <- data:
		default:
			// slow consumer, skip this event
		}
	}
	h.metrics.RecordRelayClients(len(h.wsConns) + len(h.sseConns))
}

// ClientCount reports currently connected browsers on both transports.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.wsConns) + len(h.sseConns)
}

// HandleWebSocket upgrades the request and holds the connection until
// the browser disconnects.
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("relay upgrade failed", logger.Error(err))
		return nil
	}

	h.registerWS(conn)
	done := make(chan struct{})
	defer func() {
		close(done)
		h.unregisterWS(conn)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	// incoming messages are not processed, the loop only detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// HandleSSE streams events to the browser until it disconnects.
func (h *Hub) HandleSSE(c echo.Context) error {
	w := c.Response()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ch := make(chan []byte, 64)
	h.registerSSE(ch)
	defer h.unregisterSSE(ch)

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-ch:
			if _, err := w.Write([]byte("data: ")); err != nil {
				return nil
			}
			w.Write(data)
			w.Write([]byte("\n\n"))
			w.Flush()
		case <-keepalive.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func (h *Hub) registerWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.wsConns[conn] = true
	n := len(h.wsConns) + len(h.sseConns)
	h.mu.Unlock()
	h.metrics.RecordRelayClients(n)
	h.log.Debug("relay client connected", logger.Int("clients", n))
}

func (h *Hub) unregisterWS(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsConns, conn)
	n := len(h.wsConns) + len(h.sseConns)
	h.mu.Unlock()
	h.metrics.RecordRelayClients(n)
	h.log.Debug("relay client disconnected", logger.Int("clients", n))
}

func (h *Hub) registerSSE(ch chan []byte) {
	h.mu.Lock()
	h.sseConns[ch] = true
	n := len(h.wsConns) + len(h.sseConns)
	h.mu.Unlock()
	h.metrics.RecordRelayClients(n)
}

func (h *Hub) unregisterSSE(ch chan []byte) {
	h.mu.Lock()
	delete(h.sseConns, ch)
	n := len(h.wsConns) + len(h.sseConns)
	h.mu.Unlock()
	h.metrics.RecordRelayClients(n)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.wsConns {
		conn.Close()
		delete(h.wsConns, conn)
	}
	for ch := range h.sseConns {
		delete(h.sseConns, ch)
	}
}
