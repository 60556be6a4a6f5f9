package live

import (
	"context"
	"sync"
	"time"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
	mid "darkflow/internal/middleware"
	"darkflow/pkg/logger"
)

// StreamFactory builds a fresh transport for one connection attempt.
type StreamFactory func() domrepo.EventStream

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithInitialTransport selects the transport tried first. Selecting SSE
// skips the WebSocket phase entirely.
func WithInitialTransport(t domrepo.Transport) ClientOption {
	return func(c *Client) {
		if domrepo.IsValidTransport(t) {
			c.transport = t
		}
	}
}

// Client keeps the event feed fresh. It runs a WebSocket connection
// with a fixed reconnect delay and switches to SSE after a configured
// number of consecutive WebSocket failures. Once on SSE it reconnects
// indefinitely and never switches back.
type Client struct {
	newWS          StreamFactory
	newSSE         StreamFactory
	proc           mid.Proc
	log            *logger.Logger
	metrics        domrepo.Metrics
	reconnectDelay time.Duration
	maxWSFailures  int

	mu        sync.Mutex
	active    domrepo.EventStream
	transport domrepo.Transport
	failures  int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient creates a live client.
func NewClient(newWS, newSSE StreamFactory, proc mid.Proc, log *logger.Logger, metrics domrepo.Metrics, reconnectDelay time.Duration, maxWSFailures int, opts ...ClientOption) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	if maxWSFailures <= 0 {
		maxWSFailures = 3
	}
	c := &Client{
		newWS:          newWS,
		newSSE:         newSSE,
		proc:           proc,
		log:            log,
		metrics:        metrics,
		reconnectDelay: reconnectDelay,
		maxWSFailures:  maxWSFailures,
		transport:      domrepo.DefaultTransport(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the connection loop in the background.
func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()
	go c.run(ctx)
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	if c.Transport() == domrepo.TransportSSE {
		c.runSSE(ctx)
		return
	}

	for ctx.Err() == nil {
		stream := c.newWS()
		c.setActive(stream, domrepo.TransportWebSocket)

		if err := stream.Connect(ctx); err != nil {
			c.log.Warn("websocket connect failed",
				logger.Error(err),
				logger.Int("failures", c.failureCount()+1))
			if c.onWSFailure(ctx) {
				c.runSSE(ctx)
				return
			}
			continue
		}

		// open connection resets the consecutive failure counter
		c.resetFailures()
		err := c.consume(ctx, stream)
		_ = stream.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("websocket session ended", logger.Error(err))
		if c.onWSFailure(ctx) {
			c.runSSE(ctx)
			return
		}
	}
}

// onWSFailure counts one failure, sleeps the fixed delay, and reports
// whether the SSE fallback threshold was reached.
func (c *Client) onWSFailure(ctx context.Context) bool {
	c.mu.Lock()
	c.failures++
	n := c.failures
	c.mu.Unlock()
	c.metrics.RecordReconnect(string(domrepo.TransportWebSocket))
	if n >= c.maxWSFailures {
		c.metrics.RecordTransportSwitch(string(domrepo.TransportWebSocket), string(domrepo.TransportSSE))
		c.log.Warn("switching transport to sse", logger.Int("failures", n))
		return true
	}
	sleepCtx(ctx, c.reconnectDelay)
	return false
}

// runSSE reconnects indefinitely on the fallback transport.
func (c *Client) runSSE(ctx context.Context) {
	for ctx.Err() == nil {
		stream := c.newSSE()
		c.setActive(stream, domrepo.TransportSSE)

		if err := stream.Connect(ctx); err != nil {
			c.log.Warn("sse connect failed", logger.Error(err))
			c.metrics.RecordReconnect(string(domrepo.TransportSSE))
			sleepCtx(ctx, c.reconnectDelay)
			continue
		}
		err := c.consume(ctx, stream)
		_ = stream.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("sse session ended", logger.Error(err))
		c.metrics.RecordReconnect(string(domrepo.TransportSSE))
		sleepCtx(ctx, c.reconnectDelay)
	}
}

// consume forwards events until the stream errors or the context ends.
func (c *Client) consume(ctx context.Context, stream domrepo.EventStream) error {
	events, errs := stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errs:
			return err
		case ev, ok := <-events:
			if !ok {
				return <-errs
			}
			if ev == nil {
				continue
			}
			c.metrics.RecordEvent(string(stream.Transport()), ev.Type)
			if err := c.proc.Process(ctx, ev); err != nil {
				c.log.Debug("event dropped", logger.Error(err))
			}
		}
	}
}

// Stop closes the active transport and waits for the loop to exit.
func (c *Client) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	active := c.active
	done := c.done
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if active != nil {
		_ = active.Close()
	}
	if done != nil {
		<-done
	}
}

func (c *Client) setActive(s domrepo.EventStream, t domrepo.Transport) {
	c.mu.Lock()
	c.active = s
	c.transport = t
	c.mu.Unlock()
}

func (c *Client) resetFailures() {
	c.mu.Lock()
	c.failures = 0
	c.mu.Unlock()
}

func (c *Client) failureCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Transport reports the transport currently in use.
func (c *Client) Transport() domrepo.Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport
}

// IsConnected reports whether the active transport is connected.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	return active != nil && active.IsConnected()
}

// Failures reports the consecutive failure counter.
func (c *Client) Failures() int { return c.failureCount() }

var _ mid.Proc = procFunc(nil)

type procFunc func(ctx context.Context, ev *models.FlowEvent) error

func (f procFunc) Process(ctx context.Context, ev *models.FlowEvent) error { return f(ctx, ev) }

// ProcFunc adapts a function to the pipeline interface.
func ProcFunc(f func(ctx context.Context, ev *models.FlowEvent) error) mid.Proc { return procFunc(f) }

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
