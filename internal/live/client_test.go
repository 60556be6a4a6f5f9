package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
	"darkflow/pkg/logger"
)

type fakeStream struct {
	transport  domrepo.Transport
	connectErr error
	events     []*models.FlowEvent
	persist    bool // hold the session open instead of erroring out

	mu        sync.Mutex
	connected bool
	closed    bool
}

func (f *fakeStream) Connect(_ context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) Read(ctx context.Context) (<-chan *models.FlowEvent, <-chan error) {
	events := make(chan *models.FlowEvent, len(f.events)+1)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		for _, ev := range f.events {
			events <- ev
		}
		if f.persist {
			<-ctx.Done()
			return
		}
		select {
		case <-ctx.Done():
		case <-time.After(50 * time.Millisecond):
			errs <- errors.New("stream closed")
		}
	}()
	return events, errs
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.closed = true
	return nil
}

func (f *fakeStream) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStream) Transport() domrepo.Transport { return f.transport }

func (f *fakeStream) wasClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type countMetrics struct {
	reconnects map[string]*int32
	switches   int32
	events     int32
	mu         sync.Mutex
}

func newCountMetrics() *countMetrics {
	return &countMetrics{reconnects: map[string]*int32{
		"websocket": new(int32),
		"sse":       new(int32),
	}}
}

func (m *countMetrics) RecordEvent(string, string) { atomic.AddInt32(&m.events, 1) }
func (m *countMetrics) RecordError(string)         {}
func (m *countMetrics) RecordReconnect(transport string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.reconnects[transport]; ok {
		atomic.AddInt32(c, 1)
	}
}
func (m *countMetrics) RecordTransportSwitch(string, string) { atomic.AddInt32(&m.switches, 1) }
func (m *countMetrics) RecordFeedDepth(int)                  {}
func (m *countMetrics) RecordRelayClients(int)               {}
func (m *countMetrics) RecordLatency(string, float64)        {}
func (m *countMetrics) RecordUpstreamRequest(string, string) {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return log
}

func TestClientFallsBackToSSEAfterThreshold(t *testing.T) {
	metrics := newCountMetrics()
	var wsAttempts, sseAttempts int32

	newWS := func() domrepo.EventStream {
		atomic.AddInt32(&wsAttempts, 1)
		return &fakeStream{transport: domrepo.TransportWebSocket, connectErr: errors.New("refused")}
	}
	sse := &fakeStream{transport: domrepo.TransportSSE, events: []*models.FlowEvent{
		{ID: "s1", Type: models.EventDarkFlow, Timestamp: time.Now()},
	}}
	newSSE := func() domrepo.EventStream {
		atomic.AddInt32(&sseAttempts, 1)
		return sse
	}

	var received int32
	proc := ProcFunc(func(_ context.Context, _ *models.FlowEvent) error {
		atomic.AddInt32(&received, 1)
		return nil
	})

	c := NewClient(newWS, newSSE, proc, testLogger(t), metrics, 5*time.Millisecond, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(3), atomic.LoadInt32(&wsAttempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&metrics.switches))
	assert.Equal(t, domrepo.TransportSSE, c.Transport())

	c.Stop()
	assert.True(t, sse.wasClosed())
}

func TestClientStaysOnWebSocketBelowThreshold(t *testing.T) {
	metrics := newCountMetrics()
	var attempt int32

	newWS := func() domrepo.EventStream {
		n := atomic.AddInt32(&attempt, 1)
		if n <= 2 {
			return &fakeStream{transport: domrepo.TransportWebSocket, connectErr: errors.New("refused")}
		}
		return &fakeStream{transport: domrepo.TransportWebSocket, persist: true, events: []*models.FlowEvent{
			{ID: "w1", Type: models.EventWhaleTransfer, Timestamp: time.Now()},
		}}
	}
	newSSE := func() domrepo.EventStream {
		t.Error("sse must not be used below the failure threshold")
		return &fakeStream{transport: domrepo.TransportSSE}
	}

	var received int32
	proc := ProcFunc(func(_ context.Context, _ *models.FlowEvent) error {
		atomic.AddInt32(&received, 1)
		return nil
	})

	c := NewClient(newWS, newSSE, proc, testLogger(t), metrics, 5*time.Millisecond, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// the open connection reset the counter
	assert.Equal(t, 0, c.Failures())
	assert.Equal(t, domrepo.TransportWebSocket, c.Transport())
	c.Stop()
}

func TestClientStartsOnSSEWhenConfigured(t *testing.T) {
	metrics := newCountMetrics()

	newWS := func() domrepo.EventStream {
		t.Error("websocket must not be dialed when sse is configured")
		return &fakeStream{transport: domrepo.TransportWebSocket}
	}
	sse := &fakeStream{transport: domrepo.TransportSSE, persist: true, events: []*models.FlowEvent{
		{ID: "s1", Type: models.EventDarkFlow, Timestamp: time.Now()},
	}}
	newSSE := func() domrepo.EventStream { return sse }

	var received int32
	proc := ProcFunc(func(_ context.Context, _ *models.FlowEvent) error {
		atomic.AddInt32(&received, 1)
		return nil
	})

	c := NewClient(newWS, newSSE, proc, testLogger(t), metrics, 5*time.Millisecond, 3,
		WithInitialTransport(domrepo.NormalizeTransport("sse")))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, domrepo.TransportSSE, c.Transport())
	assert.Equal(t, int32(0), atomic.LoadInt32(&metrics.switches))
	c.Stop()
	assert.True(t, sse.wasClosed())
}

func TestClientStopClosesActiveTransport(t *testing.T) {
	metrics := newCountMetrics()
	ws := &fakeStream{transport: domrepo.TransportWebSocket, persist: true, events: []*models.FlowEvent{
		{ID: "a", Type: models.EventDarkFlow, Timestamp: time.Now()},
	}}
	newWS := func() domrepo.EventStream { return ws }
	newSSE := func() domrepo.EventStream { return &fakeStream{transport: domrepo.TransportSSE} }

	var received int32
	proc := ProcFunc(func(_ context.Context, _ *models.FlowEvent) error {
		atomic.AddInt32(&received, 1)
		return nil
	})

	c := NewClient(newWS, newSSE, proc, testLogger(t), metrics, 5*time.Millisecond, 3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	c.Stop()
	assert.True(t, ws.wasClosed())
	assert.False(t, c.IsConnected())
}
