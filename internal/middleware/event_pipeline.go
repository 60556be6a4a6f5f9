package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
	"darkflow/internal/service/ratelimit"
)

// Proc is the minimal downstream interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, ev *models.FlowEvent) error
}

// EventPipeline sits between the live transport and the feed consumers.
// It validates, throttles per event type, and buffers when a downstream
// consumer is temporarily failing.
type EventPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter
	maxEPS  float64
	bufSize int
	bufCh   chan *models.FlowEvent
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
}

type PipelineOption func(*EventPipeline)

// WithMaxEventsPerSec sets the max accepted events per second per type.
// Zero disables throttling.
func WithMaxEventsPerSec(n int) PipelineOption {
	return func(p *EventPipeline) {
		p.maxEPS = float64(n)
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewEventPipeline creates a new pipeline.
func NewEventPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		proc:    proc,
		metrics: metrics,
		limiter: ratelimit.New(),
		maxEPS:  0,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.FlowEvent, p.bufSize)
	return p
}

// Start launches background flushing of buffered events.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case ev := <-p.bufCh:
				if ev == nil {
					continue
				}
				if err := p.proc.Process(ctx, ev); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- ev:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an event downstream,
// buffering on downstream errors.
func (p *EventPipeline) Process(ctx context.Context, ev *models.FlowEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	if p.maxEPS > 0 && !p.limiter.Allow("type:"+ev.Type, p.maxEPS, p.maxEPS) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, ev); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- ev:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}

	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(ev *models.FlowEvent) error {
	if ev == nil {
		return fmt.Errorf("event nil")
	}
	if ev.ID == "" {
		return fmt.Errorf("id empty")
	}
	if ev.Type == "" {
		return fmt.Errorf("type empty")
	}
	if ev.NotionalUSD < 0 || ev.Price < 0 || ev.Quantity < 0 {
		return fmt.Errorf("negative amount")
	}
	return nil
}
