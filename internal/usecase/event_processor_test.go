package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
)

type recordingSink struct {
	published []*models.FlowEvent
}

func (s *recordingSink) Publish(ev *models.FlowEvent) {
	s.published = append(s.published, ev)
}

func TestEventProcessorFansOutNewEvents(t *testing.T) {
	feed := NewEventFeed(10)
	sink := &recordingSink{}
	p := NewEventProcessor(feed, noopMetrics{}, sink)

	ev := &models.FlowEvent{ID: "e1", Type: models.EventDarkFlow, Timestamp: time.Now()}
	require.NoError(t, p.Process(context.Background(), ev))

	assert.Equal(t, 1, feed.Len())
	require.Len(t, sink.published, 1)
	assert.Equal(t, "e1", sink.published[0].ID)
}

func TestEventProcessorAbsorbsDuplicates(t *testing.T) {
	feed := NewEventFeed(10)
	sink := &recordingSink{}
	p := NewEventProcessor(feed, noopMetrics{}, sink)

	ev := &models.FlowEvent{ID: "e1", Type: models.EventDarkFlow, Timestamp: time.Now()}
	require.NoError(t, p.Process(context.Background(), ev))
	require.NoError(t, p.Process(context.Background(), ev))

	assert.Equal(t, 1, feed.Len())
	assert.Len(t, sink.published, 1)
}

func TestEventProcessorRejectsNil(t *testing.T) {
	p := NewEventProcessor(NewEventFeed(10), noopMetrics{})
	assert.Error(t, p.Process(context.Background(), nil))
}
