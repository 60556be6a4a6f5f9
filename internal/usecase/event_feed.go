package usecase

import (
	"sync"
	"time"

	"darkflow/internal/domain/models"
)

// DefaultFeedCapacity matches the dashboard's visible event window.
const DefaultFeedCapacity = 50

// EventFeed is the bounded, deduplicated in-memory list of recent flow
// events, newest first. It is the only local state the gateway keeps:
// no persistence, no replay.
type EventFeed struct {
	mu     sync.RWMutex
	cap    int
	events []*models.FlowEvent
	ids    map[string]struct{}
	lastAt time.Time
}

// NewEventFeed creates a feed with the given capacity (DefaultFeedCapacity if <= 0).
func NewEventFeed(capacity int) *EventFeed {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	return &EventFeed{
		cap: capacity,
		ids: make(map[string]struct{}, capacity),
	}
}

// Push prepends ev. Events without an id and events whose id is
// already present are dropped. Returns true if the event was accepted.
func (f *EventFeed) Push(ev *models.FlowEvent) bool {
	if ev == nil || ev.ID == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, dup := f.ids[ev.ID]; dup {
		return false
	}
	f.ids[ev.ID] = struct{}{}

	f.events = append([]*models.FlowEvent{ev}, f.events...)
	if len(f.events) > f.cap {
		dropped := f.events[f.cap:]
		f.events = f.events[:f.cap]
		for _, d := range dropped {
			delete(f.ids, d.ID)
		}
	}

	f.lastAt = time.Now()
	return true
}

// FeedFilter narrows List results; zero values match everything.
type FeedFilter struct {
	Limit  int
	Type   string
	Symbol string
	MinUSD float64
	Since  time.Time
}

// List returns a filtered copy, newest first.
func (f *EventFeed) List(filter FeedFilter) []models.FlowEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 || limit > f.cap {
		limit = f.cap
	}

	out := make([]models.FlowEvent, 0, limit)
	for _, ev := range f.events {
		if filter.Type != "" && ev.Type != filter.Type {
			continue
		}
		if filter.Symbol != "" && ev.Symbol != filter.Symbol {
			continue
		}
		if filter.MinUSD > 0 && ev.NotionalUSD < filter.MinUSD {
			continue
		}
		if !filter.Since.IsZero() && ev.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, *ev)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Len returns the current feed length.
func (f *EventFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// Cap returns the feed capacity.
func (f *EventFeed) Cap() int { return f.cap }

// LastEventAt returns when the last event was accepted.
func (f *EventFeed) LastEventAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastAt
}
