package live

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
)

func TestDecodeEventFrame(t *testing.T) {
	ev, err := decodeEventFrame([]byte(`{"type":"dark_flow","event":{"id":"e1","symbol":"BTC-USD","notional_usd":125000}}`))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, models.EventDarkFlow, ev.Type)
	assert.Equal(t, 125000.0, ev.NotionalUSD)

	ev, err = decodeEventFrame([]byte(`{"id":"e2","type":"whale_transfer","notional_usd":9.5e6}`))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, models.EventWhaleTransfer, ev.Type)

	// heartbeat frames carry no event
	ev, err = decodeEventFrame([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, ev)

	// enveloped events without an id are dropped like bare ones
	ev, err = decodeEventFrame([]byte(`{"type":"dark_flow","event":{"symbol":"BTC-USD"}}`))
	require.NoError(t, err)
	assert.Nil(t, ev)

	_, err = decodeEventFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestSSEStreamReadsEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, `data: {"id":"s1","type":"dark_flow","symbol":"ETH-USD"}`+"\n\n")
		fmt.Fprint(w, `data: {"id":"s2","type":"alert"}`+"\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	s := NewSSEStream(srv.URL, "sekrit")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))
	assert.True(t, s.IsConnected())

	events, errs := s.Read(ctx)
	var got []string
	for ev := range events {
		got = append(got, ev.ID)
	}
	assert.Equal(t, []string{"s1", "s2"}, got)
	<-errs
	require.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}

func TestSSEStreamRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSSEStream(srv.URL, "")
	err := s.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWSStreamReadsEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"id":"w1","type":"algo_signal","symbol":"SOL-USD"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"heartbeat"}`)))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"id":"w2","type":"dark_flow"}`)))
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	s := NewWSStream(wsURL, "", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Connect(ctx))

	events, _ := s.Read(ctx)

	var got []string
	for len(got) < 2 {
		select {
		case ev := <-events:
			if ev != nil {
				got = append(got, ev.ID)
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, []string{"w1", "w2"}, got)
	require.NoError(t, s.Close())
}
