package kafka

import (
	"context"
	"fmt"

	"github.com/wms-platform/location-directive-service/internal/domain"
	"github.com/wms-platform/location-directive-service/shared/pkg/cloudevents"
)

// EventProducer sends CloudEvents to a topic
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error
}

// EventPublisher implements domain event publishing using Kafka
type EventPublisher struct {
	producer     EventProducer
	eventFactory *cloudevents.EventFactory
	topic        string
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(producer EventProducer, eventFactory *cloudevents.EventFactory, topic string) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
		topic:        topic,
	}
}

// Publish publishes a single domain event to Kafka
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	ce := p.eventFactory.CreateEvent(ctx, event.EventType(), subjectOf(event), event, event.OccurredAt())

	if err := p.producer.PublishEvent(ctx, p.topic, ce); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}
	return nil
}

// PublishAll publishes events in order, stopping at the first failure
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Topic returns the topic this publisher publishes to
func (p *EventPublisher) Topic() string {
	return p.topic
}

// subjectOf is also the partition key, so all events of one directive stay ordered
func subjectOf(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.DirectiveCreatedEvent:
		return "directive/" + e.DirectiveID
	case *domain.DirectiveUpdatedEvent:
		return "directive/" + e.DirectiveID
	case *domain.DirectiveActivatedEvent:
		return "directive/" + e.DirectiveID
	case *domain.DirectiveDeactivatedEvent:
		return "directive/" + e.DirectiveID
	case *domain.LocationSelectedEvent:
		return "location/" + e.Location
	default:
		return "location-directives"
	}
}
