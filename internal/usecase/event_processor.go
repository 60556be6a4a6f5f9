package usecase

import (
	"context"
	"fmt"

	"darkflow/internal/domain/models"
	domrepo "darkflow/internal/domain/repository"
)

// EventProcessor routes accepted live events into the feed and fans
// them out to the configured sinks (browser relay, alert notifier).
// Duplicate ids are absorbed by the feed and never fanned out twice.
type EventProcessor struct {
	feed    *EventFeed
	sinks   []domrepo.EventSink
	metrics domrepo.Metrics
}

// NewEventProcessor creates an event processor.
func NewEventProcessor(feed *EventFeed, metrics domrepo.Metrics, sinks ...domrepo.EventSink) *EventProcessor {
	return &EventProcessor{feed: feed, sinks: sinks, metrics: metrics}
}

// Process inserts one event and notifies sinks when it was new.
func (p *EventProcessor) Process(_ context.Context, ev *models.FlowEvent) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}

	if !p.feed.Push(ev) {
		// duplicate id, already in the feed
		return nil
	}
	p.metrics.RecordFeedDepth(p.feed.Len())

	for _, sink := range p.sinks {
		if sink != nil {
			sink.Publish(ev)
		}
	}
	return nil
}
