package relay

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
	"darkflow/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordEvent(string, string)           {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordReconnect(string)               {}
func (nopMetrics) RecordTransportSwitch(string, string) {}
func (nopMetrics) RecordFeedDepth(int)                  {}
func (nopMetrics) RecordRelayClients(int)               {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordUpstreamRequest(string, string) {}

func testHub(t *testing.T) *Hub {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return NewHub(log, nopMetrics{})
}

func TestHubBroadcastsToWebSocketClients(t *testing.T) {
	hub := testHub(t)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(&models.FlowEvent{ID: "r1", Type: models.EventDarkFlow, Symbol: "BTC-USD"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type  string            `json:"type"`
		Event *models.FlowEvent `json:"event"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, models.EventDarkFlow, env.Type)
	assert.Equal(t, "r1", env.Event.ID)
}

func TestHubStreamsSSE(t *testing.T) {
	hub := testHub(t)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/live/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(&models.FlowEvent{ID: "s1", Type: models.EventAlert})

	reader := bufio.NewReader(resp.Body)
	deadline := time.After(2 * time.Second)
	lineCh := make(chan string, 8)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			lineCh <- line
		}
	}()
	for {
		select {
		case line := <-lineCh:
			if strings.HasPrefix(line, "data: ") {
				assert.Contains(t, line, `"id":"s1"`)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for sse event")
		}
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := testHub(t)
	e := echo.New()
	hub.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 20*time.Millisecond)
}
