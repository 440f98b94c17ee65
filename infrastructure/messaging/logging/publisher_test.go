package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mindgraph/domain/events"
)

func TestPublisher_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewPublisher(zap.New(core))

	evts := []events.DomainEvent{
		events.NewDocumentEvent(events.TypeMapSaved, "m1", "f1", "one", time.Now()),
		events.NewDocumentEvent(events.TypeMapDeleted, "m1", "f1", "", time.Now()),
	}
	require.NoError(t, p.PublishBatch(context.Background(), evts))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, events.TypeMapSaved, logs.All()[0].ContextMap()["eventType"])
	assert.Equal(t, events.TypeMapDeleted, logs.All()[1].ContextMap()["eventType"])
}
