package live

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
)

// SSEStream is the fallback live transport, a long-lived HTTP request
// reading server-sent events from the upstream feed.
type SSEStream struct {
	url    string
	apiKey string
	client *http.Client

	mu        sync.Mutex
	body      io.ReadCloser
	connected bool
}

// NewSSEStream creates an SSE EventStream.
func NewSSEStream(url, apiKey string) *SSEStream {
	return &SSEStream{
		url:    url,
		apiKey: apiKey,
		// no overall timeout; the stream stays open until closed
		client: &http.Client{},
	}
}

// Connect opens the event stream request.
func (s *SSEStream) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("sse request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sse connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("sse connect: status %d", resp.StatusCode)
	}
	s.mu.Lock()
	s.body = resp.Body
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Read streams decoded events and a terminal error.
func (s *SSEStream) Read(ctx context.Context) (<-chan *models.FlowEvent, <-chan error) {
	events := make(chan *models.FlowEvent, 256)
	errs := make(chan error, 1)

	s.mu.Lock()
	body := s.body
	s.mu.Unlock()

	go func() {
		defer close(events)
		defer close(errs)
		if body == nil {
			errs <- fmt.Errorf("sse body nil")
			return
		}
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var data bytes.Buffer
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line := scanner.Bytes()
			switch {
			case len(line) == 0:
				// blank line terminates one event
				if data.Len() > 0 {
					if ev := decodeSSEData(data.Bytes()); ev != nil {
						select {
						case events <- ev:
						default:
							// drop on backpressure
						}
					}
					data.Reset()
				}
			case bytes.HasPrefix(line, []byte("data:")):
				data.Write(bytes.TrimSpace(line[len("data:"):]))
			default:
				// comments and other fields are ignored
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("sse read: %w", err)
			return
		}
		errs <- io.EOF
	}()

	return events, errs
}

func decodeSSEData(b []byte) *models.FlowEvent {
	ev, err := decodeEventFrame(b)
	if err != nil {
		return nil
	}
	return ev
}

// Close closes the stream body.
func (s *SSEStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.body != nil {
		err := s.body.Close()
		s.body = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (s *SSEStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Transport identifies this stream.
func (s *SSEStream) Transport() domrepo.Transport { return domrepo.TransportSSE }
