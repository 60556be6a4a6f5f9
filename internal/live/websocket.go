package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
)

// WSStream is the primary live transport, a WebSocket subscription to
// the upstream event feed.
type WSStream struct {
	url          string
	apiKey       string
	pingInterval time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewWSStream creates a WebSocket EventStream.
func NewWSStream(url, apiKey string, pingInterval time.Duration) *WSStream {
	return &WSStream{
		url:          url,
		apiKey:       apiKey,
		pingInterval: pingInterval,
	}
}

// Connect dials the upstream WebSocket endpoint.
func (s *WSStream) Connect(ctx context.Context) error {
	header := http.Header{}
	if s.apiKey != "" {
		header.Set("Authorization", "Bearer "+s.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	return nil
}

type wsFrame struct {
	Type  string            `json:"type"`
	Event *models.FlowEvent `json:"event"`
}

// Read streams decoded events and a terminal error.
func (s *WSStream) Read(ctx context.Context) (<-chan *models.FlowEvent, <-chan error) {
	events := make(chan *models.FlowEvent, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("ws conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("ws read: %w", err)
					return
				}
				ev, err := decodeEventFrame(b)
				if err != nil || ev == nil {
					// ignore heartbeats and unknown frames
					continue
				}
				select {
				case events <- ev:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return events, errs
}

// decodeEventFrame accepts both an envelope {"type","event"} and a bare
// event object, returning nil for frames that carry no event.
func decodeEventFrame(b []byte) (*models.FlowEvent, error) {
	var frame wsFrame
	if err := json.Unmarshal(b, &frame); err == nil && frame.Event != nil {
		if frame.Event.ID == "" {
			return nil, nil
		}
		frame.Event.Type = normalizeType(frame.Event.Type, frame.Type)
		return frame.Event, nil
	}
	var ev models.FlowEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return nil, err
	}
	if ev.ID == "" {
		// heartbeats and control frames carry no event id
		return nil, nil
	}
	return &ev, nil
}

func normalizeType(eventType, frameType string) string {
	if eventType != "" {
		return eventType
	}
	return frameType
}

// Close closes the underlying connection.
func (s *WSStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *WSStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Transport identifies this stream.
func (s *WSStream) Transport() domrepo.Transport { return domrepo.TransportWebSocket }
