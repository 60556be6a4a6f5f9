package usecase

import (
	"context"
	"time"

	"darkflow/pkg/logger"
)

// Refresher rebuilds the dashboard snapshot on a fixed interval so
// page loads never wait on upstream fan-out.
type Refresher struct {
	views    *Views
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	done     chan struct{}
}

// NewRefresher creates a snapshot refresher.
func NewRefresher(views *Views, interval time.Duration, log *logger.Logger) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Refresher{
		views:    views,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start warms the snapshot once, then refreshes periodically.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		r.refresh(ctx)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.refresh(ctx)
			}
		}
	}()
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	snap := r.views.Refresh(ctx)
	r.log.Debug("snapshot refreshed",
		logger.Duration("took", time.Since(start)),
		logger.Bool("partial", snap.Partial))
}

// Stop halts the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	<-r.done
}
