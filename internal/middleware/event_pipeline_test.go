package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
)

type stubProc struct {
	mu     sync.Mutex
	events []*models.FlowEvent
	err    error
}

func (s *stubProc) Process(_ context.Context, ev *models.FlowEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *stubProc) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *stubProc) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type nopMetrics struct{}

func (nopMetrics) RecordEvent(string, string)           {}
func (nopMetrics) RecordError(string)                   {}
func (nopMetrics) RecordReconnect(string)               {}
func (nopMetrics) RecordTransportSwitch(string, string) {}
func (nopMetrics) RecordFeedDepth(int)                  {}
func (nopMetrics) RecordRelayClients(int)               {}
func (nopMetrics) RecordLatency(string, float64)        {}
func (nopMetrics) RecordUpstreamRequest(string, string) {}

func ev(id, typ string) *models.FlowEvent {
	return &models.FlowEvent{ID: id, Type: typ, NotionalUSD: 1000, Timestamp: time.Now()}
}

func TestPipelineForwardsValidEvents(t *testing.T) {
	proc := &stubProc{}
	p := NewEventPipeline(proc, nopMetrics{})

	require.NoError(t, p.Process(context.Background(), ev("a", models.EventDarkFlow)))
	require.NoError(t, p.Process(context.Background(), ev("b", models.EventWhaleTransfer)))
	assert.Equal(t, 2, proc.count())
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	proc := &stubProc{}
	p := NewEventPipeline(proc, nopMetrics{})

	assert.Error(t, p.Process(context.Background(), nil))
	assert.Error(t, p.Process(context.Background(), &models.FlowEvent{ID: "x"}))
	assert.Error(t, p.Process(context.Background(), &models.FlowEvent{Type: models.EventDarkFlow, Symbol: "BTC"}))
	assert.Error(t, p.Process(context.Background(), &models.FlowEvent{ID: "y", Type: models.EventDarkFlow, NotionalUSD: -5}))
	assert.Equal(t, 0, proc.count())
}

func TestPipelineThrottlesPerType(t *testing.T) {
	proc := &stubProc{}
	p := NewEventPipeline(proc, nopMetrics{}, WithMaxEventsPerSec(2))

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Process(context.Background(), ev(fmt.Sprintf("d%d", i), models.EventDarkFlow)))
	}
	// burst of 2 per type; the rest are dropped without error
	assert.Equal(t, 2, proc.count())

	// a different type has its own bucket
	require.NoError(t, p.Process(context.Background(), ev("s1", models.EventAlgoSignal)))
	assert.Equal(t, 3, proc.count())
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{}
	proc.setErr(errors.New("down"))
	p := NewEventPipeline(proc, nopMetrics{}, WithBufferSize(10))

	assert.Error(t, p.Process(context.Background(), ev("a", models.EventDarkFlow)))
	assert.Equal(t, 0, proc.count())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	proc.setErr(nil)
	assert.Eventually(t, func() bool { return proc.count() == 1 }, 2*time.Second, 20*time.Millisecond)
}
