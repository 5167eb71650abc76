package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/location-directive-service/internal/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/cloudevents"
)

type recordingProducer struct {
	topics []string
	events []*cloudevents.WMSCloudEvent
	err    error
}

func (p *recordingProducer) PublishEvent(_ context.Context, topic string, event *cloudevents.WMSCloudEvent) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestEventPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	factory := cloudevents.NewEventFactory(cloudevents.SourceLocationDirectives)
	publisher := NewEventPublisher(producer, factory, "wms.location-directives.events")

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		event   domain.DomainEvent
		subject string
	}{
		{&domain.DirectiveCreatedEvent{DirectiveID: "d-1", CreatedAt: at}, "directive/d-1"},
		{&domain.DirectiveUpdatedEvent{DirectiveID: "d-1", Change: "priority", UpdatedAt: at}, "directive/d-1"},
		{&domain.DirectiveDeactivatedEvent{DirectiveID: "d-2", DeactivatedAt: at}, "directive/d-2"},
		{&domain.LocationSelectedEvent{DirectiveID: "d-1", Location: "A-01-1", SelectedAt: at}, "location/A-01-1"},
	}

	for _, tt := range tests {
		require.NoError(t, publisher.Publish(context.Background(), tt.event))
	}

	require.Len(t, producer.events, len(tests))
	for i, tt := range tests {
		ce := producer.events[i]
		assert.Equal(t, tt.subject, ce.Subject)
		assert.Equal(t, tt.event.EventType(), ce.Type)
		assert.Equal(t, cloudevents.SourceLocationDirectives, ce.Source)
		assert.Equal(t, at, ce.Time)
		assert.Same(t, tt.event, ce.Data)
		assert.Equal(t, publisher.Topic(), producer.topics[i])
	}
}

func TestEventPublisher_PublishAllStopsOnError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker unavailable")}
	publisher := NewEventPublisher(producer, cloudevents.NewEventFactory("test"), "topic")

	err := publisher.PublishAll(context.Background(), []domain.DomainEvent{
		&domain.DirectiveActivatedEvent{DirectiveID: "d-1"},
		&domain.DirectiveActivatedEvent{DirectiveID: "d-2"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, producer.err)
	assert.Empty(t, producer.events)
}
